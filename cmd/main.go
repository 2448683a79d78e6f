package main

import (
	"context"
	"crypto/rsa"
	"net/http"
	_ "time/tzdata"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/stayware/leasing-service/internal/app"
	"github.com/stayware/leasing-service/internal/config"
	"github.com/stayware/leasing-service/internal/controllers"
	"github.com/stayware/leasing-service/internal/middleware"
	"github.com/stayware/leasing-service/internal/repositories"
	"github.com/stayware/leasing-service/internal/routes"
	"github.com/stayware/leasing-service/internal/services"
	"github.com/stayware/leasing-service/internal/utils"
)

func main() {
	utils.InitLogger("leasing-service")
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize leasing-service:", err)
	}
	defer application.Close()

	db := repositories.NewDB(application.DB)

	propertyRepo := repositories.NewPropertyRepository(db)
	unitRepo := repositories.NewUnitRepository(db)
	bedroomRepo := repositories.NewBedroomRepository(db)
	userRepo := repositories.NewUserRepository(db)
	leaseRepo := repositories.NewLeaseRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	seqRepo := repositories.NewInvoiceSequenceRepository(db)
	rentRunRepo := repositories.NewRentRunRepository(db)

	notificationService := services.NewNotificationService(cfg, userRepo)
	invoiceService := services.NewInvoiceService(db, invoiceRepo, seqRepo, userRepo)
	leaseService := services.NewLeaseService(
		db, leaseRepo, unitRepo, bedroomRepo, userRepo, invoiceService, notificationService,
	)
	expiryService := services.NewLeaseExpiryService(leaseRepo, leaseService)
	rentRunService := services.NewRentRunService(db, leaseRepo, invoiceService, userRepo, rentRunRepo)
	unitService := services.NewUnitService(db, propertyRepo, unitRepo, bedroomRepo, leaseRepo)

	if cfg.LDFlag_SeedDBWithTestData {
		if err := app.SeedTestData(
			context.Background(), db, propertyRepo, unitRepo, bedroomRepo, userRepo,
		); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	leasesController := controllers.NewLeasesController(leaseService)
	invoicesController := controllers.NewInvoicesController(invoiceService, leaseService, rentRunService)
	unitsController := controllers.NewUnitsController(unitService)
	healthController := controllers.NewHealthController()

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(
		middleware.AuthMiddleware(mustParsePublicKey(cfg.JWTPublicKeyPEM)),
		middleware.AdminOnly,
	)

	secured.HandleFunc(routes.LeasesBase, leasesController.CreateLeaseHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LeaseByID, leasesController.GetLeaseHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseByID, leasesController.UpdateLeaseHandler).Methods(http.MethodPatch, http.MethodPut)
	secured.HandleFunc(routes.LeaseByID, leasesController.DeleteLeaseHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.LeaseActivate, leasesController.ActivateLeaseHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LeaseMove, leasesController.MarkMovedHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitActiveLease, leasesController.GetActiveLeaseHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitLeaseHistory, leasesController.ListLeaseHistoryHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.InvoicesBase, invoicesController.CreateInvoiceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.LeaseInvoices, invoicesController.ListLeaseInvoicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TenantInvoices, invoicesController.ListTenantInvoicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.RentRunTrigger, invoicesController.TriggerRentRunHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.RentRunsBase, invoicesController.ListRentRunsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.RentRunByID, invoicesController.GetRentRunHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.UnitsBase, unitsController.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitByID, unitsController.GetUnitHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitByID, unitsController.UpdateUnitHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.UnitMaintenance, unitsController.SetMaintenanceHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.PropertyUnits, unitsController.ListUnitsHandler).Methods(http.MethodGet)

	c := cron.New()
	_, expiryErr := c.AddFunc(cfg.LeaseCronSpec, func() {
		if _, _, e := expiryService.ExpireDueLeases(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled lease expiry sweep failed")
		}
	})
	if expiryErr != nil {
		utils.Logger.WithError(expiryErr).Fatal("Failed to schedule lease expiry cron")
	}
	_, invoiceErr := c.AddFunc(cfg.InvoiceCronSpec, func() {
		if _, e := rentRunService.Run(context.Background(), services.TriggerScheduled); e != nil {
			utils.Logger.WithError(e).Error("Scheduled rent run failed")
		}
	})
	if invoiceErr != nil {
		utils.Logger.WithError(invoiceErr).Fatal("Failed to schedule rent run cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.PortalURL}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("leasing-service failed to start:", err)
	}
}

func mustParsePublicKey(pemStr string) *rsa.PublicKey {
	pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemStr))
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse JWT public key")
	}
	return pub
}
