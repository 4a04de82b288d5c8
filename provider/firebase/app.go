package firebase

import (
	"sync/atomic"

	"github.com/pairloom/identity"
)

// initialized guards process wide initialization. The provider SDK holds
// global state, so a second Initialize is a programming error surfaced as
// provider_already_initialized rather than silently rebinding.
var initialized atomic.Bool

// App is the initialized provider handle. It is immutable after
// Initialize and safe for concurrent use.
type App struct {
	config   Config
	verifier *IdentityVerifier
}

// Initialize binds the provider once for the process. The first call wins;
// every later call fails regardless of configuration.
func Initialize(cfg Config) (*App, error) {
	if !initialized.CompareAndSwap(false, true) {
		return nil, identity.ErrAlreadyInitialized
	}

	if err := cfg.validate(); err != nil {
		initialized.Store(false)
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	app := &App{config: cfg}
	app.verifier = &IdentityVerifier{
		client:  cfg.Client,
		timeout: cfg.verifyTimeout(),
		logger:  cfg.Logger,
	}

	return app, nil
}

// Verifier returns the token verifier bound to this app.
func (a *App) Verifier() *IdentityVerifier {
	return a.verifier
}

// ProjectID reports the project this app was initialized for.
func (a *App) ProjectID() string {
	return a.config.ProjectID
}

// resetForTesting clears the process wide guard so test cases can
// initialize repeatedly.
func resetForTesting() {
	initialized.Store(false)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
