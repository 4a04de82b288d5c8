package identity

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// RepositoryManager aggregates the stores this package owns and exposes the
// shared transaction runner collaborators hang fan-out writes on.
type RepositoryManager interface {
	Identities() Identities
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Validate() error
	MustValidate()
}
