//go:build unit

// Package memstore is an in-memory shared.UnitOfWork for usecase tests. Its
// conditional writes follow the same WHERE clauses as the SQL queries, and a
// transaction that returns an error leaves no trace.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"scent-fulfillment/internal/domain/coupon"
	"scent-fulfillment/internal/domain/inventory"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/domain/payment"
	"scent-fulfillment/internal/infra"
	"scent-fulfillment/internal/usecase/readmodel"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/google/uuid"
)

var errNotFound = errors.New("not found")

type orderRow struct {
	p order.ReconstructParams
}

type claimRow struct {
	id        uuid.UUID
	userID    uuid.UUID
	couponID  uuid.UUID
	claimSeq  int
	claimedAt time.Time
	usedAt    *time.Time
	isUsed    bool
	orderID   *uuid.UUID
}

type state struct {
	orders   map[uuid.UUID]orderRow
	coupons  map[uuid.UUID]*coupon.Coupon
	claims   map[uuid.UUID]claimRow
	counters map[string]inventory.Volume
	markers  map[uuid.UUID]inventory.Marker
	lines    map[uuid.UUID][]inventory.Line
	jobs     []readmodel.NotificationJobRM
}

func newState() *state {
	return &state{
		orders:   map[uuid.UUID]orderRow{},
		coupons:  map[uuid.UUID]*coupon.Coupon{},
		claims:   map[uuid.UUID]claimRow{},
		counters: map[string]inventory.Volume{},
		markers:  map[uuid.UUID]inventory.Marker{},
		lines:    map[uuid.UUID][]inventory.Line{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.coupons {
		c.coupons[k] = v
	}
	for k, v := range s.claims {
		c.claims[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	for k, v := range s.markers {
		c.markers[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]inventory.Line(nil), v...)
	}
	c.jobs = append([]readmodel.NotificationJobRM(nil), s.jobs...)
	return c
}

// Store serialises transactions. Reads outside a transaction see the last
// committed state.
type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex
	data   *state

	failMu      sync.Mutex
	failCommits []error
	commits     int
}

func New() *Store {
	return &Store{data: newState()}
}

// FailNextCommits makes the next len(errs) transactions fail at commit time
// with the given errors, in order.
func (s *Store) FailNextCommits(errs ...error) {
	s.failMu.Lock()
	s.failCommits = append(s.failCommits, errs...)
	s.failMu.Unlock()
}

// Commits counts successful transactions.
func (s *Store) Commits() int {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.commits
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	work := s.data.clone()
	s.dataMu.RUnlock()

	if err := fn(ctx, &memTx{st: work}); err != nil {
		return err
	}

	s.failMu.Lock()
	if len(s.failCommits) > 0 {
		err := s.failCommits[0]
		s.failCommits = s.failCommits[1:]
		s.failMu.Unlock()
		return err
	}
	s.commits++
	s.failMu.Unlock()

	s.dataMu.Lock()
	s.data = work
	s.dataMu.Unlock()
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return &committedReads{s: s}
}

// ---- seeding and inspection ----

func (s *Store) SeedCoupon(c *coupon.Coupon) {
	s.dataMu.Lock()
	s.data.coupons[c.ID()] = c
	s.dataMu.Unlock()
}

func (s *Store) SeedClaim(uc *coupon.UserCoupon) {
	s.dataMu.Lock()
	s.data.claims[uc.ID()] = claimRow{
		id:        uc.ID(),
		userID:    uc.UserID(),
		couponID:  uc.CouponID(),
		claimSeq:  uc.ClaimSeq(),
		claimedAt: uc.ClaimedAt(),
		usedAt:    uc.UsedAt(),
		isUsed:    uc.IsUsed(),
		orderID:   uc.OrderID(),
	}
	s.dataMu.Unlock()
}

func (s *Store) SeedCounter(componentID string, units inventory.Volume) {
	s.dataMu.Lock()
	s.data.counters[componentID] = units
	s.dataMu.Unlock()
}

// SeedOrder stores p as-is, bypassing creation rules.
func (s *Store) SeedOrder(p order.ReconstructParams) {
	s.dataMu.Lock()
	s.data.orders[p.ID] = orderRow{p: p}
	s.dataMu.Unlock()
}

func (s *Store) Counter(componentID string) inventory.Volume {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.data.counters[componentID]
}

func (s *Store) Order(id uuid.UUID) *order.Order {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	row, ok := s.data.orders[id]
	if !ok {
		return nil
	}
	return order.Reconstruct(row.p)
}

func (s *Store) Claim(id uuid.UUID) *coupon.UserCoupon {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	row, ok := s.data.claims[id]
	if !ok {
		return nil
	}
	return row.toDomain()
}

func (s *Store) Marker(orderID uuid.UUID) (inventory.Marker, bool) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	m, ok := s.data.markers[orderID]
	return m, ok
}

func (s *Store) Jobs() []readmodel.NotificationJobRM {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return append([]readmodel.NotificationJobRM(nil), s.data.jobs...)
}

// JobKinds lists the kinds of all outbox jobs in insertion order.
func (s *Store) JobKinds() []string {
	jobs := s.Jobs()
	kinds := make([]string, 0, len(jobs))
	for _, j := range jobs {
		kinds = append(kinds, j.Kind)
	}
	return kinds
}

func (r claimRow) toDomain() *coupon.UserCoupon {
	return coupon.ReconstructUserCoupon(r.id, r.userID, r.couponID, r.claimSeq, r.claimedAt, r.usedAt, r.isUsed, r.orderID)
}

// ---- reads ----

type committedReads struct {
	s *Store
}

func (r *committedReads) with(fn func(st *state) error) error {
	r.s.dataMu.RLock()
	defer r.s.dataMu.RUnlock()
	return fn(r.s.data)
}

func (r *committedReads) OrderByID(ctx context.Context, id uuid.UUID) (o *order.Order, err error) {
	err = r.with(func(st *state) error { o, err = stateReads{st}.OrderByID(ctx, id); return err })
	return o, err
}

func (r *committedReads) OrderByNumber(ctx context.Context, number order.Number) (o *order.Order, err error) {
	err = r.with(func(st *state) error { o, err = stateReads{st}.OrderByNumber(ctx, number); return err })
	return o, err
}

func (r *committedReads) OrderByPaymentID(ctx context.Context, paymentID string) (o *order.Order, err error) {
	err = r.with(func(st *state) error { o, err = stateReads{st}.OrderByPaymentID(ctx, paymentID); return err })
	return o, err
}

func (r *committedReads) CountCompletedOrders(ctx context.Context, userID uuid.UUID) (n int, err error) {
	err = r.with(func(st *state) error { n, err = stateReads{st}.CountCompletedOrders(ctx, userID); return err })
	return n, err
}

func (r *committedReads) CouponByID(ctx context.Context, id uuid.UUID) (c *coupon.Coupon, err error) {
	err = r.with(func(st *state) error { c, err = stateReads{st}.CouponByID(ctx, id); return err })
	return c, err
}

func (r *committedReads) UserCouponByID(ctx context.Context, id uuid.UUID) (uc *coupon.UserCoupon, err error) {
	err = r.with(func(st *state) error { uc, err = stateReads{st}.UserCouponByID(ctx, id); return err })
	return uc, err
}

func (r *committedReads) CountClaims(ctx context.Context, userID, couponID uuid.UUID) (n int, err error) {
	err = r.with(func(st *state) error { n, err = stateReads{st}.CountClaims(ctx, userID, couponID); return err })
	return n, err
}

func (r *committedReads) DeductionMarker(ctx context.Context, orderID uuid.UUID) (m *inventory.Marker, err error) {
	err = r.with(func(st *state) error { m, err = stateReads{st}.DeductionMarker(ctx, orderID); return err })
	return m, err
}

func (r *committedReads) DeductionLines(ctx context.Context, orderID uuid.UUID) (l []inventory.Line, err error) {
	err = r.with(func(st *state) error { l, err = stateReads{st}.DeductionLines(ctx, orderID); return err })
	return l, err
}

type stateReads struct {
	st *state
}

func notFound(what string) error {
	return infra.WrapRepoErr(what+" not found", errNotFound, infra.KindNotFound)
}

func (r stateReads) OrderByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	row, ok := r.st.orders[id]
	if !ok {
		return nil, notFound("order")
	}
	return order.Reconstruct(row.p), nil
}

func (r stateReads) OrderByNumber(_ context.Context, number order.Number) (*order.Order, error) {
	for _, row := range r.st.orders {
		if row.p.Number == number {
			return order.Reconstruct(row.p), nil
		}
	}
	return nil, notFound("order")
}

func (r stateReads) OrderByPaymentID(_ context.Context, paymentID string) (*order.Order, error) {
	for _, row := range r.st.orders {
		if row.p.PaymentID == paymentID {
			return order.Reconstruct(row.p), nil
		}
	}
	return nil, notFound("order")
}

func (r stateReads) CountCompletedOrders(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, row := range r.st.orders {
		if row.p.UserID != nil && *row.p.UserID == userID && row.p.Status.CountsAsCompleted() {
			n++
		}
	}
	return n, nil
}

func (r stateReads) CouponByID(_ context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	c, ok := r.st.coupons[id]
	if !ok {
		return nil, notFound("coupon")
	}
	return c, nil
}

func (r stateReads) UserCouponByID(_ context.Context, id uuid.UUID) (*coupon.UserCoupon, error) {
	row, ok := r.st.claims[id]
	if !ok {
		return nil, notFound("user coupon")
	}
	return row.toDomain(), nil
}

func (r stateReads) CountClaims(_ context.Context, userID, couponID uuid.UUID) (int, error) {
	n := 0
	for _, row := range r.st.claims {
		if row.userID == userID && row.couponID == couponID {
			n++
		}
	}
	return n, nil
}

func (r stateReads) DeductionMarker(_ context.Context, orderID uuid.UUID) (*inventory.Marker, error) {
	m, ok := r.st.markers[orderID]
	if !ok {
		return nil, notFound("deduction")
	}
	return &m, nil
}

func (r stateReads) DeductionLines(_ context.Context, orderID uuid.UUID) ([]inventory.Line, error) {
	lines := append([]inventory.Line(nil), r.st.lines[orderID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ComponentID < lines[j].ComponentID })
	return lines, nil
}

// ---- transaction ----

type memTx struct {
	st *state
}

func (t *memTx) Orders() shared.OrderRepository               { return &orderRepo{st: t.st} }
func (t *memTx) Coupons() shared.CouponRepository             { return &couponRepo{st: t.st} }
func (t *memTx) Inventory() shared.InventoryRepository        { return &inventoryRepo{st: t.st} }
func (t *memTx) Notifications() shared.NotificationRepository { return &notificationRepo{st: t.st} }
func (t *memTx) Reads() shared.CommandReads                   { return stateReads{st: t.st} }

type orderRepo struct {
	st *state
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	for _, row := range r.st.orders {
		if row.p.Number == o.Number() || row.p.PaymentID == o.PaymentID() {
			return infra.WrapRepoErr("order already exists", errors.New("duplicate"), infra.KindDuplicateKey)
		}
	}
	if id := o.UserCouponID(); id != nil {
		if _, ok := r.st.claims[*id]; !ok {
			return infra.WrapRepoErr("order references a missing coupon claim", errors.New("fk"), infra.KindForeignKeyViolated)
		}
	}
	r.st.orders[o.ID()] = orderRow{p: order.ReconstructParams{
		ID:             o.ID(),
		Number:         o.Number(),
		UserID:         o.UserID(),
		ProductType:    o.ProductType(),
		Recipe:         o.Recipe(),
		BatchVolume:    o.BatchVolume(),
		Price:          o.Pricing().Price(),
		ShippingFee:    o.Pricing().ShippingFee(),
		DiscountAmount: o.Pricing().DiscountAmount(),
		Status:         o.Status(),
		UserCouponID:   o.UserCouponID(),
		PaymentID:      o.PaymentID(),
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}}
	return nil
}

func (r *orderRepo) update(id uuid.UUID, cond func(p *order.ReconstructParams) bool, apply func(p *order.ReconstructParams)) bool {
	row, ok := r.st.orders[id]
	if !ok || !cond(&row.p) {
		return false
	}
	apply(&row.p)
	r.st.orders[id] = row
	return true
}

func (r *orderRepo) AttachRecipe(_ context.Context, id uuid.UUID, recipe inventory.Recipe, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Recipe == nil && p.Status == order.StatusPending },
		func(p *order.ReconstructParams) {
			snapshot := recipe.Clone()
			p.Recipe = &snapshot
			p.UpdatedAt = now
		}), nil
}

func (r *orderRepo) MarkPaid(_ context.Context, id uuid.UUID, rec payment.Record, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Status == order.StatusPending },
		func(p *order.ReconstructParams) {
			summary := payment.SummaryOf(rec)
			p.Status = order.StatusPaid
			p.Payment = &summary
			p.RefundedAmount = rec.Amount.Cancelled
			p.NeedsReview = false
			p.ReviewReason = ""
			p.UpdatedAt = now
		}), nil
}

func (r *orderRepo) SwapStatus(_ context.Context, id uuid.UUID, from, to order.Status, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Status == from && p.CancelRequestedAt == nil },
		func(p *order.ReconstructParams) {
			p.Status = to
			if to == order.StatusShipping {
				at := now
				p.ShippedAt = &at
			}
			p.UpdatedAt = now
		}), nil
}

func (r *orderRepo) FlagForReview(_ context.Context, id uuid.UUID, status order.Status, reason string, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Status == status },
		func(p *order.ReconstructParams) {
			p.NeedsReview = true
			p.ReviewReason = reason
			p.UpdatedAt = now
		}), nil
}

func (r *orderRepo) LatchCancellation(_ context.Context, id uuid.UUID, status order.Status, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Status == status && p.CancelRequestedAt == nil },
		func(p *order.ReconstructParams) {
			at := now
			p.CancelRequestedAt = &at
			p.UpdatedAt = now
		}), nil
}

func (r *orderRepo) ReleaseCancellation(_ context.Context, id uuid.UUID, status order.Status, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Status == status && p.CancelRequestedAt != nil },
		func(p *order.ReconstructParams) {
			p.CancelRequestedAt = nil
			p.UpdatedAt = now
		}), nil
}

func (r *orderRepo) RecordRefund(_ context.Context, id uuid.UUID, plan order.RefundPlan, cancelledAmount int64, paymentStatus payment.Status, now time.Time) (bool, error) {
	return r.update(id,
		func(p *order.ReconstructParams) bool { return p.Status == plan.From },
		func(p *order.ReconstructParams) {
			p.Status = plan.To
			p.RefundedAmount = cancelledAmount
			if p.Payment != nil {
				summary := *p.Payment
				summary.CancelledAmount = cancelledAmount
				summary.Status = paymentStatus
				p.Payment = &summary
			}
			p.CancelRequestedAt = nil
			p.UpdatedAt = now
		}), nil
}

type couponRepo struct {
	st *state
}

func (r *couponRepo) CreateClaim(_ context.Context, uc *coupon.UserCoupon) error {
	if _, ok := r.st.coupons[uc.CouponID()]; !ok {
		return infra.WrapRepoErr("claim references a missing coupon", errors.New("fk"), infra.KindForeignKeyViolated)
	}
	for _, row := range r.st.claims {
		if row.userID == uc.UserID() && row.couponID == uc.CouponID() && row.claimSeq == uc.ClaimSeq() {
			return infra.WrapRepoErr("coupon already claimed", errors.New("duplicate"), infra.KindDuplicateKey)
		}
	}
	r.st.claims[uc.ID()] = claimRow{
		id:        uc.ID(),
		userID:    uc.UserID(),
		couponID:  uc.CouponID(),
		claimSeq:  uc.ClaimSeq(),
		claimedAt: uc.ClaimedAt(),
	}
	return nil
}

func (r *couponRepo) Redeem(_ context.Context, userCouponID, userID, orderID uuid.UUID, now time.Time) (bool, error) {
	row, ok := r.st.claims[userCouponID]
	if !ok || row.userID != userID || row.isUsed {
		return false, nil
	}
	at := now
	row.isUsed = true
	row.usedAt = &at
	row.orderID = &orderID
	r.st.claims[userCouponID] = row
	return true, nil
}

func (r *couponRepo) Revert(_ context.Context, userCouponID, orderID uuid.UUID) (bool, error) {
	row, ok := r.st.claims[userCouponID]
	if !ok || !row.isUsed || row.orderID == nil || *row.orderID != orderID {
		return false, nil
	}
	row.isUsed = false
	row.usedAt = nil
	row.orderID = nil
	r.st.claims[userCouponID] = row
	return true, nil
}

type inventoryRepo struct {
	st *state
}

func (r *inventoryRepo) InsertMarker(_ context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	if _, ok := r.st.markers[orderID]; ok {
		return false, nil
	}
	r.st.markers[orderID] = inventory.Marker{OrderID: orderID, AppliedAt: now}
	return true, nil
}

func (r *inventoryRepo) Decrement(_ context.Context, componentID string, units inventory.Volume, _ time.Time) (bool, error) {
	left, ok := r.st.counters[componentID]
	if !ok || left < units {
		return false, nil
	}
	r.st.counters[componentID] = left - units
	return true, nil
}

func (r *inventoryRepo) Increment(_ context.Context, componentID string, units inventory.Volume) (bool, error) {
	left, ok := r.st.counters[componentID]
	if !ok {
		return false, nil
	}
	r.st.counters[componentID] = left + units
	return true, nil
}

func (r *inventoryRepo) SaveLines(_ context.Context, orderID uuid.UUID, lines []inventory.Line) error {
	r.st.lines[orderID] = append([]inventory.Line(nil), lines...)
	return nil
}

func (r *inventoryRepo) MarkRecredited(_ context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	m, ok := r.st.markers[orderID]
	if !ok || m.RecreditedAt != nil {
		return false, nil
	}
	at := now
	m.RecreditedAt = &at
	r.st.markers[orderID] = m
	return true, nil
}

type notificationRepo struct {
	st *state
}

func (r *notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.st.jobs = append(r.st.jobs, readmodel.NotificationJobRM{
		ID:        uuid.New(),
		Kind:      kind,
		Topic:     topic,
		Payload:   append([]byte(nil), payload...),
		RunAt:     runAt,
		Status:    readmodel.JobStatusQueued,
		CreatedAt: runAt,
	})
	return nil
}

func (r *notificationRepo) ClaimDue(_ context.Context, now time.Time, limit int32) ([]readmodel.NotificationJobRM, error) {
	var due []readmodel.NotificationJobRM
	for _, j := range r.st.jobs {
		if int32(len(due)) >= limit {
			break
		}
		if j.Status == readmodel.JobStatusQueued && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	return due, nil
}

func (r *notificationRepo) UpdateStatus(_ context.Context, jobID uuid.UUID, status string, lastError *string) error {
	for i := range r.st.jobs {
		if r.st.jobs[i].ID == jobID {
			r.st.jobs[i].Status = status
			r.st.jobs[i].LastError = lastError
			r.st.jobs[i].Attempts++
			return nil
		}
	}
	return notFound("notification job")
}
