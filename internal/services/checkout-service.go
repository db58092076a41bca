package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/matriculausa/payment_service/internal/clients/stripeapi"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/helper"
	"github.com/matriculausa/payment_service/internal/repository"
	"github.com/matriculausa/payment_service/pkg/utils"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

const (
	VerifyStatusPaid             = "paid"
	VerifyStatusAlreadyProcessed = "already_processed"
	VerifyStatusIncomplete       = "incomplete"
)

type CheckoutService interface {
	// CreateSession builds the Stripe Checkout Session and records the
	// pending payment row. It never marks anything paid.
	CreateSession(studentID *uint, input dto.CreateCheckoutRequest) (*dto.CreateCheckoutResponse, error)

	// VerifySession re-fetches the session from Stripe (client-supplied
	// status is never trusted) and, on the first confirmed-paid call only,
	// applies the side effects: finalize coupon usage, create the
	// affiliate referral, dispatch notifications.
	VerifySession(sessionID string) (*dto.VerifySessionResponse, error)
}

type checkoutService struct {
	paymentRepo   repository.PaymentRepository
	feeRepo       repository.FeeConfigRepository
	affiliateRepo repository.AffiliateRepository
	couponSvc     CouponService
	notifySvc     NotificationService
	stripeClient  stripeapi.Client
}

func NewCheckoutService(
	paymentRepo repository.PaymentRepository,
	feeRepo repository.FeeConfigRepository,
	affiliateRepo repository.AffiliateRepository,
	couponSvc CouponService,
	notifySvc NotificationService,
	stripeClient stripeapi.Client,
) CheckoutService {
	return &checkoutService{
		paymentRepo:   paymentRepo,
		feeRepo:       feeRepo,
		affiliateRepo: affiliateRepo,
		couponSvc:     couponSvc,
		notifySvc:     notifySvc,
		stripeClient:  stripeClient,
	}
}

func (s *checkoutService) CreateSession(studentID *uint, input dto.CreateCheckoutRequest) (*dto.CreateCheckoutResponse, error) {
	feeType, ok := domain.ParseFeeType(strings.TrimSpace(input.FeeType))
	if !ok {
		return nil, fmt.Errorf("unknown fee_type %q", input.FeeType)
	}
	if strings.TrimSpace(input.SuccessURL) == "" || strings.TrimSpace(input.CancelURL) == "" {
		return nil, errors.New("success_url and cancel_url are required")
	}
	if studentID == nil && strings.TrimSpace(input.GuestEmail) == "" {
		return nil, errors.New("guest email is required")
	}

	amountCents, err := s.resolveAmount(feeType, input.UniversityID)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"fee_type": string(feeType),
	}
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	if studentID != nil {
		metadata["student_id"] = strconv.FormatUint(uint64(*studentID), 10)
	}
	if input.GuestEmail != "" {
		metadata["guest_email"] = input.GuestEmail
		metadata["guest_name"] = input.GuestName
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		Metadata:   metadata,
	}
	if input.GuestEmail != "" {
		params.CustomerEmail = stripe.String(input.GuestEmail)
	}

	if input.PriceID != "" {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(1),
			},
		}
	} else {
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(feeDisplayName(feeType)),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		}
	}

	if input.StripeCouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(input.StripeCouponID)},
		}
		// the verifier needs the original code text to finalize usage
		metadata["coupon_code"] = strings.TrimPrefix(input.StripeCouponID, stripeCouponPrefix)
	}

	sess, err := s.stripeClient.CreateCheckoutSession(params)
	if err != nil {
		// upstream detail stays in the server log
		log.Printf("[STRIPE] create session error: %v", err)
		return nil, errors.New("failed to create checkout session")
	}

	payment := &domain.Payment{
		StudentID:       studentID,
		FeeType:         feeType,
		AmountCents:     amountCents,
		Currency:        "usd",
		Status:          domain.PaymentStatusPending,
		StripeSessionID: sess.ID,
	}
	if input.GuestEmail != "" {
		guestEmail := input.GuestEmail
		payment.GuestEmail = &guestEmail
	}
	if len(input.ScholarshipIDs) > 0 {
		ids := strings.Join(input.ScholarshipIDs, ",")
		payment.ScholarshipIDs = &ids
	}

	if _, err := s.paymentRepo.CreatePayment(payment); err != nil {
		// session exists on Stripe but no local row: verifier tolerates
		// this (it reports payment not found) and the session expires on
		// its own
		return nil, err
	}

	return &dto.CreateCheckoutResponse{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

func (s *checkoutService) VerifySession(sessionID string) (*dto.VerifySessionResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session_id is required")
	}

	sess, err := s.stripeClient.GetCheckoutSession(sessionID)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		log.Printf("[STRIPE] get session error: %v", err)
		return nil, errors.New("failed to fetch session")
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		if sess.Status == stripe.CheckoutSessionStatusExpired {
			s.markExpired(sessionID)
		}
		return &dto.VerifySessionResponse{Status: VerifyStatusIncomplete}, nil
	}

	payment, err := s.paymentRepo.FindBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	transitioned, err := s.paymentRepo.MarkPaid(payment.ID, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// webhook or an earlier verify call got here first
		return &dto.VerifySessionResponse{Status: VerifyStatusAlreadyProcessed, PaymentID: payment.ID}, nil
	}

	s.applyPaidSideEffects(payment, sess)

	return &dto.VerifySessionResponse{Status: VerifyStatusPaid, PaymentID: payment.ID}, nil
}

// applyPaidSideEffects runs exactly once per payment, guarded by the
// pending->paid transition. Individual failures are logged, not propagated:
// the payment is already paid and the client must see success.
func (s *checkoutService) applyPaidSideEffects(payment *domain.Payment, sess *stripe.CheckoutSession) {
	couponCode := sess.Metadata["coupon_code"]

	if couponCode != "" && payment.StudentID != nil {
		paymentRef := strconv.FormatUint(uint64(payment.ID), 10)
		if err := s.couponSvc.ConfirmUsage(*payment.StudentID, couponCode, payment.FeeType, paymentRef); err != nil {
			log.Printf("[VERIFY] confirm coupon usage error: %v", err)
		}
		s.maybeCreateReferral(payment, couponCode)

		err := s.notifySvc.Dispatch(dto.EventDiscountRedeemed, dto.DispatchNotificationRequest{
			Target:         "student",
			TargetID:       *payment.StudentID,
			Title:          "Discount applied",
			Body:           fmt.Sprintf("Code %s was applied to your %s payment.", couponCode, feeDisplayName(payment.FeeType)),
			IdempotencyKey: fmt.Sprintf("discount_redeemed:%d", payment.ID),
		})
		if err != nil {
			log.Printf("[VERIFY] dispatch discount notification error: %v", err)
		}
	}

	email := ""
	if payment.GuestEmail != nil {
		email = *payment.GuestEmail
	} else if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}

	if payment.StudentID != nil {
		err := s.notifySvc.Dispatch(dto.EventPaymentReceived, dto.DispatchNotificationRequest{
			Target:         "student",
			TargetID:       *payment.StudentID,
			Title:          "Payment received",
			Body:           fmt.Sprintf("Your %s payment of $%.2f was received.", feeDisplayName(payment.FeeType), utils.FromCents(payment.AmountCents)),
			IdempotencyKey: fmt.Sprintf("payment_paid:%d", payment.ID),
			Email:          email,
		})
		if err != nil {
			log.Printf("[VERIFY] dispatch notification error: %v", err)
		}
	}
}

// markExpired records the terminal expired state for an abandoned session.
// Only pending rows move; a paid row is never touched.
func (s *checkoutService) markExpired(sessionID string) {
	payment, err := s.paymentRepo.FindBySessionID(sessionID)
	if err != nil {
		return
	}
	if err := s.paymentRepo.MarkStatus(payment.ID, domain.PaymentStatusExpired); err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[VERIFY] mark expired error: %v", err)
	}
}

func (s *checkoutService) maybeCreateReferral(payment *domain.Payment, code string) {
	affiliateCode, err := s.affiliateRepo.FindCodeByCode(utils.NormalizeCode(code))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[VERIFY] affiliate lookup error: %v", err)
		}
		return
	}

	referral := &domain.AffiliateReferral{
		ReferrerUserID:     affiliateCode.ReferrerUserID,
		ReferredStudentID:  *payment.StudentID,
		PaymentID:          payment.ID,
		AffiliateCodeID:    affiliateCode.ID,
		PaymentAmountCents: payment.AmountCents,
		CreditedCents:      affiliateCode.DiscountCents,
		Status:             domain.ReferralStatusPending,
	}
	if err := s.affiliateRepo.CreateReferral(referral); err != nil {
		if helper.IsDuplicateKey(err) {
			return // payment already credited
		}
		log.Printf("[VERIFY] create referral error: %v", err)
	}
}

func (s *checkoutService) resolveAmount(feeType domain.FeeType, universityID *uint) (int64, error) {
	if universityID != nil {
		cfg, err := s.feeRepo.FindOverride(*universityID, feeType)
		if err == nil {
			return cfg.AmountCentsOverride, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	amount, ok := domain.DefaultFeeAmounts[feeType]
	if !ok {
		return 0, fmt.Errorf("no amount configured for fee_type %q", feeType)
	}
	return amount, nil
}

func feeDisplayName(feeType domain.FeeType) string {
	switch feeType {
	case domain.FeeSelectionProcess:
		return "Selection Process Fee"
	case domain.FeeApplication:
		return "Application Fee"
	case domain.FeeScholarship:
		return "Scholarship Fee"
	case domain.FeeI20Control:
		return "I-20 Control Fee"
	case domain.FeeEnrollment:
		return "Enrollment Fee"
	}
	return string(feeType)
}
