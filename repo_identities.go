package identity

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

type identities struct {
	db     *bun.DB
	logger Logger
}

var _ Identities = (*identities)(nil)

// IdentitiesOption configures the identities repository.
type IdentitiesOption func(*identities)

// WithIdentitiesLogger overrides the default logger.
func WithIdentitiesLogger(logger Logger) IdentitiesOption {
	return func(r *identities) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewIdentitiesRepository creates the bun-backed Identities store.
func NewIdentitiesRepository(db *bun.DB, opts ...IdentitiesOption) Identities {
	repo := &identities{
		db:     db,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}

	return repo
}

// CreateOrUpdate upserts the record keyed by subject id in one statement.
// There is no read-then-branch-then-write: two concurrent calls for the
// same new subject both succeed and exactly one takes the insert path.
// Uniqueness of email/phone is enforced by the store; a violation is
// classified after the write, never pre-checked.
func (r *identities) CreateOrUpdate(ctx context.Context, subjectID, email string, phone *string) (*IdentityRecord, bool, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, false, errors.New("subject id is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, false, ErrEmailRequired.Clone()
	}

	now := time.Now().UTC()
	record := &IdentityRecord{
		ID:        subjectID,
		Email:     email,
		Phone:     normalizePhone(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("phone = EXCLUDED.phone").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, false, r.classifyWriteError(err, subjectID)
	}

	// The inserting statement is the only one where both timestamps come
	// from the same instant; the update path keeps the original created_at.
	wasCreated := record.CreatedAt.Equal(record.UpdatedAt)

	return record, wasCreated, nil
}

// FindByID returns (nil, nil) when no record exists.
func (r *identities) FindByID(ctx context.Context, subjectID string) (*IdentityRecord, error) {
	record := &IdentityRecord{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(subjectID)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "identity lookup failed")
	}

	return record, nil
}

// FindByEmail matches case-insensitively: addresses are lower-cased before
// every write and every lookup, so the comparison happens on the normalized
// form the unique index already covers.
func (r *identities) FindByEmail(ctx context.Context, email string) (*IdentityRecord, error) {
	record := &IdentityRecord{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "identity lookup failed")
	}

	return record, nil
}

// TouchLastActive stamps last_active_at and updated_at for the subject.
// A missing record is not an error; callers get 0 affected rows.
func (r *identities) TouchLastActive(ctx context.Context, subjectID string) (int64, error) {
	now := time.Now().UTC()

	res, err := r.db.NewUpdate().
		Model((*IdentityRecord)(nil)).
		Set("last_active_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", strings.TrimSpace(subjectID)).
		Exec(ctx)

	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to touch identity activity")
	}

	return res.RowsAffected()
}

// Delete removes the record, freeing its email and phone for reuse.
// Idempotent from the caller's perspective: deleting a missing subject
// reports 0 affected rows.
func (r *identities) Delete(ctx context.Context, subjectID string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*IdentityRecord)(nil)).
		Where("id = ?", strings.TrimSpace(subjectID)).
		Exec(ctx)

	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to delete identity")
	}

	return res.RowsAffected()
}

func (r *identities) classifyWriteError(err error, subjectID string) error {
	if isUniqueViolation(err) {
		r.logger.Info("identity sync hit a uniqueness conflict", "subject", subjectID, "error", err)
		conflict := ErrIdentityConflict.Clone()
		conflict.Source = err
		return conflict.WithMetadata(map[string]any{
			"subject": subjectID,
			"column":  violatedColumn(err),
		})
	}

	r.logger.Error("identity sync write failed", "subject", subjectID, "error", err)
	return errors.Wrap(err, errors.CategoryInternal, "identity write failed")
}

// isUniqueViolation matches both the sqlite and postgres constraint
// vocabularies since either dialect sits behind bun in deployments.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "constraint failed: identities.")
}

func violatedColumn(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "phone"):
		return "phone"
	default:
		return "unknown"
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizePhone formats parseable numbers to E.164 before they hit the
// unique index, so " +44 20 7946 0958" and "+442079460958" cannot coexist
// as two different rows. Unparseable values pass through trimmed; format
// gating belongs to the validation chains, not the store edge.
func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "+") {
		if parsed, err := phonenumbers.Parse(trimmed, ""); err == nil {
			formatted := phonenumbers.Format(parsed, phonenumbers.E164)
			return &formatted
		}
	}

	return &trimmed
}
