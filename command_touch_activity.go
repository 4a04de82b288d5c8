package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type TouchActivityMessage struct {
	Subject    string `json:"subject"`
	OnResponse func(*TouchActivityResponse)
}

func (e TouchActivityMessage) Type() string { return "identity.touch_activity" }

type TouchActivityResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

// TouchActivityHandler stamps the liveness timestamp for a subject.
// Touching a missing subject is a no-op, not a failure.
type TouchActivityHandler struct {
	repo RepositoryManager
}

func NewTouchActivityHandler(repo RepositoryManager) *TouchActivityHandler {
	return &TouchActivityHandler{repo: repo}
}

func (h *TouchActivityHandler) Execute(ctx context.Context, event TouchActivityMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during activity touch",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *TouchActivityHandler) execute(ctx context.Context, event TouchActivityMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	affected, err := h.repo.Identities().TouchLastActive(ctx, event.Subject)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "activity touch failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&TouchActivityResponse{RowsAffected: affected})
	}

	return nil
}
