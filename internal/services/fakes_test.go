package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// ---------- coupon repo ----------

type fakeCouponRepo struct {
	coupons map[string]*domain.PromotionalCoupon
	saved   int
}

func newFakeCouponRepo(coupons ...*domain.PromotionalCoupon) *fakeCouponRepo {
	r := &fakeCouponRepo{coupons: map[string]*domain.PromotionalCoupon{}}
	for _, c := range coupons {
		r.coupons[c.Code] = c
	}
	return r
}

func (r *fakeCouponRepo) FindPromotionalByCode(code string) (*domain.PromotionalCoupon, error) {
	c, ok := r.coupons[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCouponRepo) SavePromotional(coupon *domain.PromotionalCoupon) error {
	r.coupons[coupon.Code] = coupon
	r.saved++
	return nil
}

// ---------- coupon usage repo ----------

type fakeUsageRepo struct {
	mu     sync.Mutex
	usages []*domain.CouponUsage
}

func (r *fakeUsageRepo) CreateUsage(usage *domain.CouponUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *usage
	r.usages = append(r.usages, &cp)
	return nil
}

func (r *fakeUsageRepo) CountConfirmed(userID, couponID uint, feeType domain.FeeType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.usages {
		if u.UserID == userID && u.CouponID == couponID && u.FeeType == feeType && !u.IsValidation {
			n++
		}
	}
	return n, nil
}

func (r *fakeUsageRepo) FinalizeProvisional(userID, couponID uint, feeType domain.FeeType, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usages {
		if u.UserID == userID && u.CouponID == couponID && u.FeeType == feeType && u.IsValidation {
			u.IsValidation = false
			u.PaymentID = paymentID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUsageRepo) DeleteProvisional(userID uint, couponID uint, feeType domain.FeeType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.CouponUsage
	var removed int64
	for _, u := range r.usages {
		provisional := u.IsValidation && strings.HasPrefix(u.PaymentID, domain.ValidationPaymentIDPrefix)
		if provisional && u.UserID == userID && u.CouponID == couponID && u.FeeType == feeType {
			removed++
			continue
		}
		kept = append(kept, u)
	}
	r.usages = kept
	return removed, nil
}

// ---------- affiliate repo ----------

type fakeAffiliateRepo struct {
	codes     map[string]*domain.AffiliateCode
	referrals []*domain.AffiliateReferral
}

func newFakeAffiliateRepo(codes ...*domain.AffiliateCode) *fakeAffiliateRepo {
	r := &fakeAffiliateRepo{codes: map[string]*domain.AffiliateCode{}}
	for _, c := range codes {
		r.codes[c.Code] = c
	}
	return r
}

func (r *fakeAffiliateRepo) FindCodeByCode(code string) (*domain.AffiliateCode, error) {
	c, ok := r.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeAffiliateRepo) CreateReferral(referral *domain.AffiliateReferral) error {
	for _, existing := range r.referrals {
		if existing.PaymentID == referral.PaymentID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_affiliate_referrals_payment_id"}
		}
	}
	r.referrals = append(r.referrals, referral)
	return nil
}

func (r *fakeAffiliateRepo) ListReferralsByReferrer(referrerUserID uint, limit, offset int) ([]domain.AffiliateReferral, error) {
	var out []domain.AffiliateReferral
	for _, ref := range r.referrals {
		if ref.ReferrerUserID == referrerUserID {
			out = append(out, *ref)
		}
	}
	return out, nil
}

// ---------- stripe client ----------

type fakeStripeClient struct {
	couponCalls     int
	promoCalls      int
	createdParams   []*stripe.CheckoutSessionParams
	session         *stripe.CheckoutSession
	getErr          error
	createErr       error
	ensureCouponErr error
}

func (c *fakeStripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.createdParams = append(c.createdParams, params)
	return &stripe.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.stripe.com/c/pay/cs_test_123",
	}, nil
}

func (c *fakeStripeClient) GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.session, nil
}

func (c *fakeStripeClient) EnsureCoupon(couponID string, amountOffCents int64, currency string) (*stripe.Coupon, error) {
	if c.ensureCouponErr != nil {
		return nil, c.ensureCouponErr
	}
	c.couponCalls++
	return &stripe.Coupon{ID: couponID}, nil
}

func (c *fakeStripeClient) EnsurePromotionCode(couponID, code string) (*stripe.PromotionCode, error) {
	c.promoCalls++
	return &stripe.PromotionCode{ID: "promo_" + code, Code: code}, nil
}

// ---------- payment repo ----------

type fakePaymentRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*domain.Payment
	bySess map[string]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		nextID: 1,
		byID:   map[uint]*domain.Payment{},
		bySess: map[string]*domain.Payment{},
	}
}

func (r *fakePaymentRepo) CreatePayment(payment *domain.Payment) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = r.nextID
	r.nextID++
	r.byID[payment.ID] = payment
	r.bySess[payment.StripeSessionID] = payment
	return payment, nil
}

func (r *fakePaymentRepo) FindBySessionID(sessionID string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.bySess[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) FindByID(paymentID uint) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[paymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) MarkPaid(paymentID uint, paymentIntentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[paymentID]
	if !ok || p.Status != domain.PaymentStatusPending {
		return false, nil
	}
	p.Status = domain.PaymentStatusPaid
	if paymentIntentID != "" {
		p.StripePaymentIntentID = &paymentIntentID
	}
	return true, nil
}

func (r *fakePaymentRepo) MarkStatus(paymentID uint, to domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[paymentID]
	if !ok || p.Status != domain.PaymentStatusPending {
		return gorm.ErrRecordNotFound
	}
	p.Status = to
	return nil
}

func (r *fakePaymentRepo) ListByStudent(studentID uint, limit, offset int) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.byID {
		if p.StudentID != nil && *p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ---------- fee config repo ----------

type fakeFeeConfigRepo struct {
	overrides map[string]*domain.UniversityFeeConfiguration
}

func feeKey(universityID uint, feeType domain.FeeType) string {
	return fmt.Sprintf("%d:%s", universityID, feeType)
}

func newFakeFeeConfigRepo(overrides ...*domain.UniversityFeeConfiguration) *fakeFeeConfigRepo {
	r := &fakeFeeConfigRepo{overrides: map[string]*domain.UniversityFeeConfiguration{}}
	for _, o := range overrides {
		r.overrides[feeKey(o.UniversityID, o.FeeType)] = o
	}
	return r
}

func (r *fakeFeeConfigRepo) FindOverride(universityID uint, feeType domain.FeeType) (*domain.UniversityFeeConfiguration, error) {
	o, ok := r.overrides[feeKey(universityID, feeType)]
	if !ok || !o.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *fakeFeeConfigRepo) ListByUniversity(universityID uint) ([]domain.UniversityFeeConfiguration, error) {
	var out []domain.UniversityFeeConfiguration
	for _, o := range r.overrides {
		if o.UniversityID == universityID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeFeeConfigRepo) Upsert(cfg *domain.UniversityFeeConfiguration) error {
	r.overrides[feeKey(cfg.UniversityID, cfg.FeeType)] = cfg
	return nil
}

// ---------- notification repo ----------

type fakeNotificationRepo struct {
	studentKeys    map[string]bool
	universityKeys map[string]bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		studentKeys:    map[string]bool{},
		universityKeys: map[string]bool{},
	}
}

func (r *fakeNotificationRepo) CreateStudentNotification(n *domain.StudentNotification) error {
	if r.studentKeys[n.IdempotencyKey] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "uidx_student_notifications_idem"}
	}
	r.studentKeys[n.IdempotencyKey] = true
	return nil
}

func (r *fakeNotificationRepo) CreateUniversityNotification(n *domain.UniversityNotification) error {
	if r.universityKeys[n.IdempotencyKey] {
		return &pgconn.PgError{Code: "23505", ConstraintName: "uidx_university_notifications_idem"}
	}
	r.universityKeys[n.IdempotencyKey] = true
	return nil
}

// ---------- notification service (recording) ----------

type fakeNotifySvc struct {
	dispatched []dto.DispatchNotificationRequest
}

func (s *fakeNotifySvc) Dispatch(eventType string, input dto.DispatchNotificationRequest) error {
	s.dispatched = append(s.dispatched, input)
	return nil
}

// ---------- coupon service (recording) ----------

type fakeCouponSvc struct {
	confirmed []string // "code|paymentID"
}

func (s *fakeCouponSvc) Validate(userID uint, rawCode string, feeType domain.FeeType, purchaseAmount float64) (*ValidationResult, error) {
	return &ValidationResult{Success: true}, nil
}

func (s *fakeCouponSvc) RemoveProvisionalUsage(userID uint, rawCode string, feeType domain.FeeType) (int64, error) {
	return 0, nil
}

func (s *fakeCouponSvc) ConfirmUsage(userID uint, rawCode string, feeType domain.FeeType, paymentID string) error {
	s.confirmed = append(s.confirmed, rawCode+"|"+paymentID)
	return nil
}

// ---------- zelle repo ----------

type fakeZelleRepo struct {
	nextID   uint
	payments map[uint]*domain.ZellePayment
	history  []domain.ZellePaymentHistory
}

func newFakeZelleRepo() *fakeZelleRepo {
	return &fakeZelleRepo{nextID: 1, payments: map[uint]*domain.ZellePayment{}}
}

func (r *fakeZelleRepo) CreateZellePayment(p *domain.ZellePayment) (*domain.ZellePayment, error) {
	p.ID = r.nextID
	r.nextID++
	if p.Status == "" {
		p.Status = domain.ZelleStatusPendingReview
	}
	r.payments[p.ID] = p
	return p, nil
}

func (r *fakeZelleRepo) FindByID(zellePaymentID uint) (*domain.ZellePayment, error) {
	p, ok := r.payments[zellePaymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeZelleRepo) ListByStatus(status domain.ZelleStatus, limit, offset int) ([]domain.ZellePayment, error) {
	var out []domain.ZellePayment
	for _, p := range r.payments {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeZelleRepo) Transition(zellePaymentID uint, from, to domain.ZelleStatus, changedBy *uint, reason *string) error {
	p, ok := r.payments[zellePaymentID]
	if !ok || p.Status != from {
		return gorm.ErrRecordNotFound
	}
	p.Status = to
	r.history = append(r.history, domain.ZellePaymentHistory{
		ZellePaymentID: zellePaymentID,
		FromStatus:     from,
		ToStatus:       to,
		ChangedBy:      changedBy,
		Reason:         reason,
	})
	return nil
}
