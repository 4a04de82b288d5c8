package identity

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/pairloom/identity/middleware/jwtware"
)

// jwtValidatorAdapter bridges TokenService to the middleware's validator
// interface without an import cycle.
type jwtValidatorAdapter struct {
	tokens TokenService
}

func (a jwtValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SessionProtectedRoute guards routes with self-signed session tokens.
func SessionProtectedRoute(tokens TokenService, cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		TokenValidator: jwtValidatorAdapter{tokens: tokens},
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}

// ProviderProtectedRoute guards routes with provider issued identity
// tokens. On success the derived principal is stored in router locals
// under key and in the request context.
func ProviderProtectedRoute(verifier PrincipalVerifier, key string, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if key == "" {
		key = "principal"
	}
	extractors := jwtware.GetExtractors("header:"+router.HeaderAuthorization, "Bearer")
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := jwtware.ExtractRawTokenFromContext(ctx, extractors)
			if err != nil {
				return errorHandler(ctx, err)
			}

			principal := verifier.VerifyOrNil(ctx.Context(), raw)
			if principal == nil {
				return errorHandler(ctx, ErrVerificationFailed)
			}

			ctx.Locals(key, principal)
			ctx.SetContext(WithPrincipal(ctx.Context(), principal))

			return ctx.Next()
		}
	}
}

// MakeTokenAuthErrorHandler collapses every token failure into one
// unauthorized response. The specific cause stays in the server log.
func MakeTokenAuthErrorHandler(logger Logger, optional bool) func(router.Context, error) error {
	if logger == nil {
		logger = defLogger{}
	}
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsVerificationError(err) {
			richErr = ErrVerificationFailed
		} else if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeTokenMalformed)
		}

		logger.Info(
			"auth failed: %s text_code=%s path=%s",
			richErr.Message, richErr.TextCode, ctx.OriginalURL(),
		)

		if optional {
			return ctx.Next()
		}

		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}
}

type IdentityControllerRoutes struct {
	Sync    string
	Session string
	Touch   string
}

// IdentityController exposes the identity sync surface over HTTP.
type IdentityController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Verifier     PrincipalVerifier
	Tokens       TokenService
	Routes       *IdentityControllerRoutes
	ErrorHandler router.ErrorHandler
}

type IdentityControllerOption func(*IdentityController) *IdentityController

func NewIdentityController(opts ...IdentityControllerOption) *IdentityController {
	c := &IdentityController{
		Logger: defLogger{},
		Routes: &IdentityControllerRoutes{
			Sync:    "/identity/sync",
			Session: "/identity/session",
			Touch:   "/identity/activity",
		},
	}
	c.ErrorHandler = c.errorHandler

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in identity controller...")
	}

	if c.Verifier == nil {
		panic("Missing PrincipalVerifier in identity controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) IdentityControllerOption {
	return func(c *IdentityController) *IdentityController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepository(repo RepositoryManager) IdentityControllerOption {
	return func(c *IdentityController) *IdentityController {
		c.Repo = repo
		return c
	}
}

func WithControllerVerifier(verifier PrincipalVerifier) IdentityControllerOption {
	return func(c *IdentityController) *IdentityController {
		c.Verifier = verifier
		return c
	}
}

func WithControllerTokens(tokens TokenService) IdentityControllerOption {
	return func(c *IdentityController) *IdentityController {
		c.Tokens = tokens
		return c
	}
}

// RegisterIdentityRoutes mounts the controller behind the provider token
// middleware. Every route requires a verified principal.
func RegisterIdentityRoutes[T any](app router.Router[T], opts ...IdentityControllerOption) *IdentityController {
	controller := NewIdentityController(opts...)

	guard := ProviderProtectedRoute(
		controller.Verifier,
		"principal",
		MakeTokenAuthErrorHandler(controller.Logger, false),
	)

	app.Post(controller.Routes.Sync, controller.Sync, guard).
		SetName("identity-sync.post")

	app.Post(controller.Routes.Touch, controller.TouchActivity, guard).
		SetName("identity-activity.post")

	if controller.Tokens != nil {
		app.Post(controller.Routes.Session, controller.Session, guard).
			SetName("identity-session.post")
	}

	return controller
}

type identityResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone,omitempty"`
	EmailVerified bool    `json:"emailVerified"`
	IsNewUser     bool    `json:"isNewUser"`
}

type sessionResponse struct {
	Token    string           `json:"token"`
	Identity identityResponse `json:"identity"`
}

// Sync upserts the identity record for the request principal.
func (a *IdentityController) Sync(ctx router.Context) error {
	principal, ok := GetRouterPrincipal(ctx, "principal")
	if !ok {
		return a.ErrorHandler(ctx, ErrVerificationFailed)
	}

	record, created, err := a.syncPrincipal(ctx, principal)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	status := router.StatusOK
	if created {
		status = router.StatusCreated
	}
	return ctx.JSON(status, projectRecord(record, principal, created))
}

// Session exchanges a verified provider token for a self-signed session
// token, syncing the identity record along the way.
func (a *IdentityController) Session(ctx router.Context) error {
	if a.Tokens == nil {
		return a.ErrorHandler(ctx, errors.New(
			"token service not configured",
			errors.CategoryInternal,
		).WithCode(errors.CodeInternal))
	}

	principal, ok := GetRouterPrincipal(ctx, "principal")
	if !ok {
		return a.ErrorHandler(ctx, ErrVerificationFailed)
	}

	record, created, err := a.syncPrincipal(ctx, principal)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	token, err := a.Tokens.Issue(recordIdentity{record: record})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, sessionResponse{
		Token:    token,
		Identity: projectRecord(record, principal, created),
	})
}

// TouchActivity stamps last seen for the request principal. A principal
// that was never synced has no row to stamp and gets a not found outcome.
func (a *IdentityController) TouchActivity(ctx router.Context) error {
	principal, ok := GetRouterPrincipal(ctx, "principal")
	if !ok {
		return a.ErrorHandler(ctx, ErrVerificationFailed)
	}

	rows, err := a.Repo.Identities().TouchLastActive(ctx.Context(), principal.Subject)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if rows == 0 {
		return a.ErrorHandler(ctx, ErrIdentityNotFound.Clone().WithMetadata(map[string]any{
			"subject": principal.Subject,
		}))
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"updated": true,
	})
}

func (a *IdentityController) syncPrincipal(ctx router.Context, principal *Principal) (*IdentityRecord, bool, error) {
	sync := NewSynchronizer(a.Repo.Identities(), WithSyncLogger(a.Logger))
	return sync.SyncPrincipal(ctx.Context(), principal)
}

func projectRecord(record *IdentityRecord, principal *Principal, created bool) identityResponse {
	return identityResponse{
		ID:            record.ID,
		Email:         record.Email,
		Phone:         record.Phone,
		EmailVerified: principal.EmailVerified,
		IsNewUser:     created,
	}
}

func (a *IdentityController) errorHandler(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Error(
		"identity handler error: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	case errors.CategoryConflict:
		return ctx.JSON(router.StatusConflict, map[string]string{
			"error":     richErr.Message,
			"text_code": richErr.TextCode,
		})
	case errors.CategoryBadInput, errors.CategoryValidation:
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error":     richErr.Message,
			"text_code": richErr.TextCode,
		})
	case errors.CategoryNotFound:
		return ctx.JSON(router.StatusNotFound, map[string]string{
			"error":     richErr.Message,
			"text_code": richErr.TextCode,
		})
	default:
		payload := map[string]any{"error": "internal server error"}
		if a.Debug {
			payload["details"] = richErr.Error()
		}
		return ctx.JSON(router.StatusInternalServerError, payload)
	}
}

// recordIdentity adapts a stored record to the token issuing contract.
type recordIdentity struct {
	record *IdentityRecord
}

func (r recordIdentity) ID() string      { return r.record.ID }
func (r recordIdentity) Email() string   { return r.record.Email }
func (r recordIdentity) Roles() []string { return nil }
