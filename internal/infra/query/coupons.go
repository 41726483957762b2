package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCoupon = `INSERT INTO coupons (id, code, type, discount_percent, valid_from, valid_to, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type CreateCouponParams struct {
	ID              uuid.UUID
	Code            string
	Type            string
	DiscountPercent int32
	ValidFrom       pgtype.Timestamptz
	ValidTo         pgtype.Timestamptz
	IsActive        bool
	CreatedAt       time.Time
}

func (q *Queries) CreateCoupon(ctx context.Context, db DBTX, arg CreateCouponParams) error {
	_, err := db.Exec(ctx, createCoupon,
		arg.ID, arg.Code, arg.Type, arg.DiscountPercent, arg.ValidFrom, arg.ValidTo, arg.IsActive, arg.CreatedAt)
	return err
}

const getCouponByID = `SELECT id, code, type, discount_percent, valid_from, valid_to, is_active, created_at
FROM coupons WHERE id = $1`

func (q *Queries) GetCouponByID(ctx context.Context, db DBTX, id uuid.UUID) (Coupon, error) {
	rows, err := db.Query(ctx, getCouponByID, id)
	if err != nil {
		return Coupon{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Coupon])
}

const getUserCouponByID = `SELECT id, user_id, coupon_id, claim_seq, claimed_at, used_at, is_used, order_id
FROM user_coupons WHERE id = $1`

func (q *Queries) GetUserCouponByID(ctx context.Context, db DBTX, id uuid.UUID) (UserCoupon, error) {
	rows, err := db.Query(ctx, getUserCouponByID, id)
	if err != nil {
		return UserCoupon{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[UserCoupon])
}

const countUserCouponClaims = `SELECT count(*) FROM user_coupons WHERE user_id = $1 AND coupon_id = $2`

func (q *Queries) CountUserCouponClaims(ctx context.Context, db DBTX, userID, couponID uuid.UUID) (int64, error) {
	var n int64
	err := db.QueryRow(ctx, countUserCouponClaims, userID, couponID).Scan(&n)
	return n, err
}

const createUserCoupon = `INSERT INTO user_coupons (id, user_id, coupon_id, claim_seq, claimed_at, is_used)
VALUES ($1, $2, $3, $4, $5, false)`

type CreateUserCouponParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CouponID  uuid.UUID
	ClaimSeq  int32
	ClaimedAt time.Time
}

func (q *Queries) CreateUserCoupon(ctx context.Context, db DBTX, arg CreateUserCouponParams) error {
	_, err := db.Exec(ctx, createUserCoupon, arg.ID, arg.UserID, arg.CouponID, arg.ClaimSeq, arg.ClaimedAt)
	return err
}

const redeemUserCoupon = `UPDATE user_coupons SET is_used = true, used_at = $3, order_id = $4
WHERE id = $1 AND user_id = $2 AND is_used = false`

type RedeemUserCouponParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	UsedAt  time.Time
	OrderID uuid.UUID
}

func (q *Queries) RedeemUserCoupon(ctx context.Context, db DBTX, arg RedeemUserCouponParams) (bool, error) {
	return q.swap(ctx, db, redeemUserCoupon, arg.ID, arg.UserID, arg.UsedAt, arg.OrderID)
}

const revertUserCoupon = `UPDATE user_coupons SET is_used = false, used_at = NULL, order_id = NULL
WHERE id = $1 AND order_id = $2 AND is_used = true`

func (q *Queries) RevertUserCoupon(ctx context.Context, db DBTX, id, orderID uuid.UUID) (bool, error) {
	return q.swap(ctx, db, revertUserCoupon, id, orderID)
}

const listClaimedCoupons = `SELECT uc.id, uc.coupon_id, c.code, c.type, c.discount_percent, c.valid_to,
	uc.claim_seq, uc.claimed_at, uc.used_at, uc.is_used, uc.order_id
FROM user_coupons uc
JOIN coupons c ON c.id = uc.coupon_id
WHERE uc.user_id = $1
ORDER BY uc.claimed_at DESC, uc.id DESC`

func (q *Queries) ListClaimedCoupons(ctx context.Context, db DBTX, userID uuid.UUID) ([]ClaimedCouponRow, error) {
	rows, err := db.Query(ctx, listClaimedCoupons, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ClaimedCouponRow])
}
