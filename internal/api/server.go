package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/matriculausa/payment_service/config"
	"github.com/matriculausa/payment_service/infra/queue"
	"github.com/matriculausa/payment_service/internal/api/rest/handlers"
	"github.com/matriculausa/payment_service/internal/clients/stripeapi"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/helper"
	"github.com/matriculausa/payment_service/internal/repository"
	"github.com/matriculausa/payment_service/internal/services"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()
	log.Printf("KafkaBroker=%q KafkaTopic=%q", cfg.KafkaBroker, cfg.KafkaTopic)
	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260815

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.Payment{},
		&domain.PromotionalCoupon{},
		&domain.CouponUsage{},
		&domain.AffiliateCode{},
		&domain.AffiliateReferral{},
		&domain.StudentNotification{},
		&domain.UniversityNotification{},
		&domain.ZellePayment{},
		&domain.ZellePaymentHistory{},
		&domain.UniversityFeeConfiguration{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	stripeClient := stripeapi.New(cfg.StripeSecretKey)

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Repositories ----------
	paymentRepo := repository.NewPaymentRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	affiliateRepo := repository.NewAffiliateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	zelleRepo := repository.NewZelleRepository(db)
	feeConfigRepo := repository.NewFeeConfigRepository(db)

	// ---------- Service ----------
	notifySvc := services.NewNotificationService(notificationRepo, kafkaProducer)
	couponSvc := services.NewCouponService(couponRepo, usageRepo, affiliateRepo, stripeClient)
	checkoutSvc := services.NewCheckoutService(
		paymentRepo,
		feeConfigRepo,
		affiliateRepo,
		couponSvc,
		notifySvc,
		stripeClient,
	)
	zelleSvc := services.NewZelleService(zelleRepo, notifySvc)

	// ---------- Handler ----------
	paymentHandler := handlers.NewPaymentHandler(checkoutSvc)
	couponHandler := handlers.NewCouponHandler(couponSvc)
	zelleHandler := handlers.NewZelleHandler(zelleSvc)
	notificationHandler := handlers.NewNotificationHandler(notifySvc)
	feeConfigHandler := handlers.NewFeeConfigHandler(feeConfigRepo)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handlers.SetupRoutes(
		app,
		authHelper,
		paymentHandler,
		couponHandler,
		zelleHandler,
		notificationHandler,
		feeConfigHandler,
	)

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
