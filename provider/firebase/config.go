package firebase

import (
	"strings"
	"time"

	"github.com/pairloom/identity"
)

// DefaultVerifyTimeout bounds a single token verification round trip.
const DefaultVerifyTimeout = 10 * time.Second

// placeholderProjectIDs are scaffold values that ship with SDK examples.
// Accepting one would verify tokens against a project nobody owns.
var placeholderProjectIDs = map[string]struct{}{
	"your-project-id": {},
	"demo-project":    {},
}

// Config holds Firebase configuration for token verification.
type Config struct {
	// ProjectID is the Firebase project the tokens must belong to.
	ProjectID string

	// VerifyTimeout bounds each verification call.
	// Default: 10 seconds.
	VerifyTimeout time.Duration

	// Client performs the actual token check against the provider.
	Client TokenClient

	// Logger is optional.
	Logger identity.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(projectID string, client TokenClient) Config {
	return Config{
		ProjectID:     projectID,
		Client:        client,
		VerifyTimeout: DefaultVerifyTimeout,
	}
}

func (c Config) validate() error {
	projectID := strings.TrimSpace(c.ProjectID)
	if projectID == "" {
		return identity.ErrInvalidConfig.Clone().
			WithMetadata(map[string]any{
				"reason": "project id is required",
			})
	}

	if _, ok := placeholderProjectIDs[projectID]; ok {
		return identity.ErrInvalidConfig.Clone().
			WithMetadata(map[string]any{
				"reason":     "placeholder project id",
				"project_id": projectID,
			})
	}

	if c.Client == nil {
		return identity.ErrInvalidConfig.Clone().
			WithMetadata(map[string]any{
				"reason": "token client is required",
			})
	}

	return nil
}

func (c Config) verifyTimeout() time.Duration {
	if c.VerifyTimeout > 0 {
		return c.VerifyTimeout
	}
	return DefaultVerifyTimeout
}
