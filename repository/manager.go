package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/pairloom/identity"
	"github.com/uptrace/bun"
)

type mngr struct {
	db         *bun.DB
	identities identity.Identities
}

// NewRepositoryManager wires the package stores onto one bun handle.
func NewRepositoryManager(db *bun.DB) identity.RepositoryManager {
	return &mngr{
		db:         db,
		identities: identity.NewIdentitiesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.identities == nil {
		return errors.New("repository identities should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Identities() identity.Identities {
	return m.identities
}
