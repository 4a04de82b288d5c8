package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type SyncIdentityMessage struct {
	Subject       string `json:"subject"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	OnResponse    func(*SyncIdentityResponse)
}

func (e SyncIdentityMessage) Type() string { return "identity.sync" }

type SyncIdentityResponse struct {
	Record    *IdentityRecord `json:"record"`
	IsNewUser bool            `json:"is_new_user"`
}

// SyncIdentityHandler executes identity synchronization as a command
// message. The upsert is a single statement, so no surrounding transaction
// is required; the handler adds the timeout and cancellation guard.
type SyncIdentityHandler struct {
	repo RepositoryManager
}

func NewSyncIdentityHandler(repo RepositoryManager) *SyncIdentityHandler {
	return &SyncIdentityHandler{repo: repo}
}

func (h *SyncIdentityHandler) Execute(ctx context.Context, event SyncIdentityMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during identity sync",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SyncIdentityHandler) execute(ctx context.Context, event SyncIdentityMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	principal := NewPrincipal(event.Subject, event.Email, event.Phone, event.EmailVerified, nil)

	synchronizer := NewSynchronizer(h.repo.Identities())
	record, created, err := synchronizer.SyncPrincipal(ctx, principal)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "identity sync failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&SyncIdentityResponse{
			Record:    record,
			IsNewUser: created,
		})
	}

	return nil
}
