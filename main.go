package main

import (
	"paystream/config"
	"paystream/handlers"
	"paystream/middleware"
	"paystream/models"
	"paystream/repository"
	"paystream/services"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initServices() (*gorm.DB, services.WalletGateway, *services.PaymentScheduler, error) {
	db, err := gorm.Open(sqlite.Open(config.AppConfig.DBPath), &gorm.Config{})
	if err != nil {
		return nil, nil, nil, err
	}

	if err := db.AutoMigrate(&models.Company{}, &models.Employee{}, &models.Payment{}); err != nil {
		return nil, nil, nil, err
	}

	var gateway services.WalletGateway
	if config.AppConfig.ChainMode == "rpc" {
		gateway = services.NewChainGateway(
			config.AppConfig.ChainRPCURL,
			config.AppConfig.ChainNetwork,
			"", // payer account comes from the node's signer
		)
	} else {
		gateway = services.NewMockGateway("")
	}

	scheduler := services.NewPaymentScheduler(
		repository.NewCompanyRepo(db),
		repository.NewEmployeeRepo(db),
		repository.NewPaymentRepo(db),
		gateway,
		utils.Logger,
	)
	scheduler.CheckInterval = config.AppConfig.CheckInterval
	scheduler.PaymentTimeout = config.AppConfig.PaymentTimeout

	return db, gateway, scheduler, nil
}

// RegisterRoutes mounts the API surface on app. Split out so tests can
// build an app against their own database and scheduler.
func RegisterRoutes(app *fiber.App) {
	app.Post("/wallet/connect", handlers.ConnectWallet)
	app.Get("/wallet/info", middleware.RequireSession, handlers.GetWalletInfo)

	app.Post("/companies", middleware.RequireSession, handlers.RegisterCompany)
	app.Get("/companies/:id", middleware.RequireSession, handlers.GetCompany)
	app.Patch("/companies/:id", middleware.RequireCompany, handlers.UpdateCompany)

	app.Post("/employees", middleware.RequireCompany, handlers.AddEmployee)
	app.Get("/employees", middleware.RequireCompany, handlers.GetAllEmployees)
	app.Patch("/employees/:id/status", middleware.RequireCompany, handlers.ToggleEmployeeStatus)
	app.Delete("/employees/:id", middleware.RequireCompany, handlers.RemoveEmployee)

	app.Get("/payments", middleware.RequireCompany, handlers.GetPayments)
	app.Post("/payments/bonus", middleware.RequireCompany, handlers.ScheduleBonus)
	app.Post("/payments/:id/cancel", middleware.RequireCompany, handlers.CancelPayment)

	app.Get("/scheduler/status", middleware.RequireCompany, handlers.GetSchedulerStatus)
	app.Post("/scheduler/start", middleware.RequireCompany, handlers.StartScheduler)
	app.Post("/scheduler/stop", middleware.RequireCompany, handlers.StopScheduler)
	app.Post("/scheduler/trigger", middleware.RequireCompany, handlers.TriggerPayroll)

	app.Get("/dashboard", middleware.RequireCompany, handlers.GetDashboard)
}

func main() {
	config.LoadConfig()
	utils.InitLogger()
	defer utils.Logger.Sync()

	db, gateway, scheduler, err := initServices()
	if err != nil {
		utils.Logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	handlers.InitHandlers(db, gateway, scheduler)

	app := fiber.New()
	RegisterRoutes(app)

	scheduler.Start()
	defer scheduler.Stop()

	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		utils.Logger.Fatal("Server stopped", zap.Error(err))
	}
}
