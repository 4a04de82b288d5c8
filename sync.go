package identity

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// Synchronizer reconciles a verified provider identity with the local
// identity record. It holds no record state of its own; the store's atomic
// upsert is the only consistency boundary.
type Synchronizer struct {
	identities Identities
	logger     Logger
}

// SynchronizerOption configures optional Synchronizer collaborators.
type SynchronizerOption func(*Synchronizer)

// WithSyncLogger overrides the default logger.
func WithSyncLogger(logger Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSynchronizer creates a Synchronizer backed by the given store.
func NewSynchronizer(identities Identities, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		identities: identities,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// SyncPrincipal upserts the identity record for a verified principal and
// reports whether this request created it. Email is mandatory even though
// the provider technically allows email-less accounts.
func (s *Synchronizer) SyncPrincipal(ctx context.Context, principal *Principal) (*IdentityRecord, bool, error) {
	if s == nil || s.identities == nil {
		return nil, false, errors.New("identities store is required", errors.CategoryInternal)
	}

	if principal == nil {
		return nil, false, errors.New("principal is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if strings.TrimSpace(principal.Subject) == "" {
		return nil, false, errors.New("principal subject is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if strings.TrimSpace(principal.Email) == "" {
		return nil, false, ErrEmailRequired.Clone().
			WithMetadata(map[string]any{"subject": principal.Subject})
	}

	var phone *string
	if strings.TrimSpace(principal.PhoneNumber) != "" {
		phone = &principal.PhoneNumber
	}

	record, created, err := s.identities.CreateOrUpdate(ctx, principal.Subject, principal.Email, phone)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("created identity record", "subject", record.ID)
	}

	return record, created, nil
}
