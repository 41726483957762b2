package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const getAuthSession = `SELECT token_digest, user_id, role, expires_at FROM auth_sessions
WHERE token_digest = $1 AND expires_at > $2`

func (q *Queries) GetAuthSession(ctx context.Context, db DBTX, digest []byte, now time.Time) (AuthSession, error) {
	rows, err := db.Query(ctx, getAuthSession, digest, now)
	if err != nil {
		return AuthSession{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[AuthSession])
}

const createAuthSession = `INSERT INTO auth_sessions (token_digest, user_id, role, expires_at) VALUES ($1, $2, $3, $4)`

func (q *Queries) CreateAuthSession(ctx context.Context, db DBTX, digest []byte, userID uuid.UUID, role string, expiresAt time.Time) error {
	_, err := db.Exec(ctx, createAuthSession, digest, userID, role, expiresAt)
	return err
}
