package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dardif/lodging-api/internal/audit"
	"github.com/dardif/lodging-api/internal/config"
	"github.com/dardif/lodging-api/internal/handlers"
	infraRepo "github.com/dardif/lodging-api/internal/infra/repository"
	"github.com/dardif/lodging-api/internal/lock"
	"github.com/dardif/lodging-api/internal/middleware"
	"github.com/dardif/lodging-api/internal/payment"
	ucBooking "github.com/dardif/lodging-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	locker := lock.New(lock.NewClient(cfg.RedisAddr, cfg.RedisPassword))

	payments, err := payment.NewMercadoPago(cfg.MPAccessToken)
	if err != nil {
		log.Fatalf("failed to init payment client: %v", err)
	}

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// 🧠 USE CASES — BOOKINGS
	// ======================================================
	reserveUC := ucBooking.NewReserve(
		bookingRepo,
		payments,
		locker,
		auditDispatcher,
	)

	checkInUC := ucBooking.NewCheckIn(
		bookingRepo,
		locker,
		auditDispatcher,
	)

	completeUC := ucBooking.NewComplete(
		bookingRepo,
		locker,
		auditDispatcher,
	)

	releaseUC := ucBooking.NewReleaseDates(
		bookingRepo,
		auditDispatcher,
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	buildingHandler := handlers.NewBuildingHandler(db, auditDispatcher)
	apartmentHandler := handlers.NewApartmentHandler(db, auditDispatcher)

	bookingHandler := handlers.NewBookingHandler(
		db,
		reserveUC,
		checkInUC,
		completeUC,
		releaseUC,
	)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/buildings", buildingHandler.List)
		api.GET("/buildings/:id", buildingHandler.Get)
		api.GET("/buildings/:id/apartments", apartmentHandler.ListByBuilding)
		api.GET("/apartments/:id", apartmentHandler.Get)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.POST("/buildings/:id/apartments/:apartmentId/bookings", bookingHandler.Create)
			secured.GET("/me/bookings", bookingHandler.ListOwn)
			secured.GET("/me/bookings/:id", bookingHandler.GetOwn)

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/buildings", buildingHandler.Create)
				admin.PATCH("/buildings/:id", buildingHandler.Update)
				admin.DELETE("/buildings/:id", buildingHandler.Delete)

				admin.POST("/buildings/:id/apartments", apartmentHandler.Create)
				admin.PATCH("/apartments/:id", apartmentHandler.Update)
				admin.DELETE("/apartments/:id", apartmentHandler.Delete)

				admin.GET("/bookings", bookingHandler.List)
				admin.GET("/bookings/:id", bookingHandler.Get)
				admin.PATCH("/bookings/:id/checkin", bookingHandler.CheckIn)
				admin.PATCH("/bookings/:id/complete", bookingHandler.Complete)
				admin.DELETE("/bookings/:id/dates", bookingHandler.Release)
			}
		}
	}
}
