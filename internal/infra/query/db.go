// Package query holds the SQL statements of the service and the row types
// they scan into. Every method takes the DBTX to run on so the same Queries
// value serves the pool and open transactions alike.
package query

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct{}

func New() *Queries {
	return &Queries{}
}

// swap runs a conditional UPDATE (or an INSERT ... ON CONFLICT DO NOTHING)
// whose WHERE clause encodes the expected prior state. It reports true only
// when exactly one row changed; false means another writer got there first
// or the precondition no longer holds.
func (q *Queries) swap(ctx context.Context, db DBTX, sql string, args ...interface{}) (bool, error) {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
