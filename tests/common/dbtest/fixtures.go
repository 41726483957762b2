//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scent-fulfillment/internal/infra/identity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Reference stock in 0.1 mL units: 100 mL of each component.
const DefaultStockUnits int64 = 1000

var referenceComponents = []string{"BERGAMOT", "CEDAR", "VANILLA"}

func CreateCoupon(t *testing.T, db DBLike, code, couponType string, percent int) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO coupons (id, code, type, discount_percent, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (code) DO NOTHING",
		couponID, code, couponType, percent)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM coupons WHERE code = $1", code).Scan(&couponID)
	}

	return couponID
}

// CreateSession stores a storefront session for token and returns the user it belongs to.
func CreateSession(t *testing.T, db DBLike, token, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO auth_sessions (token_digest, user_id, role, expires_at) VALUES ($1, $2, $3, $4)",
		identity.Digest(token), userID, role, time.Now().Add(time.Hour))
	require.NoError(t, err)

	return userID
}

func StockOf(t *testing.T, db DBLike, componentID string) int64 {
	t.Helper()

	var units int64
	err := db.QueryRow(context.Background(),
		"SELECT remaining_units FROM inventory_counters WHERE component_id = $1", componentID).Scan(&units)
	require.NoError(t, err)
	return units
}

func SetStock(t *testing.T, db DBLike, componentID string, units int64) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE inventory_counters SET remaining_units = $2 WHERE component_id = $1", componentID, units)
	require.NoError(t, err)
}

// CountJobs counts queued or sent notification jobs of the given kind.
func CountJobs(t *testing.T, db DBLike, kind string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM notification_jobs WHERE kind = $1", kind).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	for _, id := range referenceComponents {
		_, err := pool.Exec(ctx, `
			INSERT INTO inventory_counters (component_id, remaining_units) VALUES ($1, $2)
			ON CONFLICT (component_id) DO UPDATE SET remaining_units = EXCLUDED.remaining_units, last_deducted_at = NULL;
		`, id, DefaultStockUnits)
		if err != nil {
			return err
		}
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
