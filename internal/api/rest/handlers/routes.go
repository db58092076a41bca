package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/api/rest/middleware"
	"github.com/matriculausa/payment_service/internal/helper"
)

func SetupRoutes(
	app *fiber.App,
	auth helper.Auth,
	paymentHandler *PaymentHandler,
	couponHandler *CouponHandler,
	zelleHandler *ZelleHandler,
	notificationHandler *NotificationHandler,
	feeConfigHandler *FeeConfigHandler,
) {
	api := app.Group("/api")

	// =========================
	// PAYMENTS
	// =========================
	payments := api.Group("/payments")

	// EB-3 guest checkout has no account yet, so it sits above the auth
	// middleware.
	payments.Post("/checkout/eb3", paymentHandler.CreateGuestCheckout)
	payments.Post("/verify", paymentHandler.VerifySession)

	// Public fee listing
	api.Get("/fees/universities/:id", feeConfigHandler.List)

	app.Use(middleware.AuthMiddleware(auth))

	payments.Post("/checkout", paymentHandler.CreateCheckout)

	// =========================
	// COUPONS
	// =========================
	coupons := api.Group("/coupons")
	coupons.Post("/validate", couponHandler.Validate)
	coupons.Delete("/usage", couponHandler.RemoveUsage)

	// =========================
	// ZELLE
	// =========================
	zelle := api.Group("/zelle/payments")
	zelle.Post("/", zelleHandler.Create)
	zelle.Get("/pending", zelleHandler.ListPending)
	zelle.Post("/:id/validate-code", zelleHandler.ValidateCode)
	zelle.Post("/:id/review", zelleHandler.Review)

	// =========================
	// NOTIFICATIONS
	// =========================
	api.Post("/notifications/dispatch", notificationHandler.Dispatch)

	// =========================
	// FEES (admin)
	// =========================
	api.Put("/fees/universities/:id", feeConfigHandler.Upsert)
}
