package readstore

import (
	"context"
	"time"

	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/infra/query"
	"scent-fulfillment/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type SessionReadQueries interface {
	GetAuthSession(ctx context.Context, db query.DBTX, digest []byte, now time.Time) (query.AuthSession, error)
}

type Session struct {
	UserID    uuid.UUID
	Role      string
	ExpiresAt time.Time
}

// SessionStore looks up third-party sessions by token digest. Raw tokens are
// never stored.
type SessionStore struct {
	queries SessionReadQueries
	db      query.DBTX
}

func NewSessionStore(queries SessionReadQueries, db query.DBTX) *SessionStore {
	return &SessionStore{
		queries: queries,
		db:      db,
	}
}

func (s *SessionStore) FindByDigest(ctx context.Context, digest []byte, now time.Time) (*Session, error) {
	row, err := s.queries.GetAuthSession(ctx, s.db, digest, now)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("session not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find session", err)
	}
	return &Session{
		UserID:    row.UserID,
		Role:      row.Role,
		ExpiresAt: row.ExpiresAt,
	}, nil
}
