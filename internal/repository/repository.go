package repository

import (
	"github.com/jmoiron/sqlx"
)

// Repos holds the entity queries. Statements run through ext, which is
// either the root pool or a single transaction (see WithTx).
type Repos struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db, ext: db} }

// WithTx returns a view of the repositories whose statements all run inside
// the given transaction. The caller owns commit and rollback.
func (r *Repos) WithTx(tx *sqlx.Tx) *Repos { return &Repos{db: r.db, ext: tx} }

func (r *Repos) DB() *sqlx.DB { return r.db }
