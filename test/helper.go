package test

import (
	"log"
	"testing"
	"time"

	"paystream/config"
	"paystream/handlers"
	"paystream/middleware"
	"paystream/models"
	"paystream/repository"
	"paystream/services"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	testApp       *fiber.App
	testDB        *gorm.DB
	testGateway   *services.MockGateway
	testScheduler *services.PaymentScheduler
)

func init() {
	config.LoadTestConfig()
	utils.InitLogger()

	var err error
	// Shared in-memory SQLite; one connection so concurrent payroll
	// writes serialize at the pool instead of hitting table locks.
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to test database:", err)
	}
	sqlDB, err := testDB.DB()
	if err != nil {
		log.Fatal("Failed to access test database pool:", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := testDB.AutoMigrate(&models.Company{}, &models.Employee{}, &models.Payment{}); err != nil {
		log.Fatal("Failed to migrate test database:", err)
	}
}

func SetupTest(t *testing.T) (*fiber.App, *gorm.DB) {
	ResetTestDB()

	testGateway = services.NewMockGateway("0xcompany")
	testGateway.Latency = 0
	testGateway.FailureRate = 0

	testScheduler = NewTestScheduler(testGateway)
	handlers.InitHandlers(testDB, testGateway, testScheduler)

	testApp = fiber.New()
	registerRoutes(testApp)

	return testApp, testDB
}

// NewTestScheduler builds a scheduler on the test database with short
// timers.
func NewTestScheduler(gateway services.WalletGateway) *services.PaymentScheduler {
	s := services.NewPaymentScheduler(
		repository.NewCompanyRepo(testDB),
		repository.NewEmployeeRepo(testDB),
		repository.NewPaymentRepo(testDB),
		gateway,
		zap.NewNop(),
	)
	s.CheckInterval = 50 * time.Millisecond
	s.PaymentTimeout = time.Second
	return s
}

func registerRoutes(app *fiber.App) {
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

func ResetTestDB() {
	testDB.Exec("DELETE FROM payments")
	testDB.Exec("DELETE FROM employees")
	testDB.Exec("DELETE FROM companies")
}

// Helper function to create a wallet session token
func createTestToken(walletAddress, companyID string) string {
	claims := jwt.MapClaims{
		"wallet_address": walletAddress,
		"exp":            time.Now().Add(24 * time.Hour).Unix(),
	}
	if companyID != "" {
		claims["company_id"] = companyID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		log.Printf("Error creating test token: %v", err)
		return ""
	}
	return tokenString
}

func seedCompany(t *testing.T, schedule string, createdAt time.Time) *models.Company {
	t.Helper()
	company := &models.Company{
		Name:            "Acme Labs",
		Email:           "payroll@acme.test",
		WalletAddress:   "0x" + uuid.New().String(),
		PaymentSchedule: schedule,
		MonthlyBudget:   decimal.NewFromInt(50000),
		IsActive:        true,
		CreatedAt:       createdAt,
	}
	require.NoError(t, repository.NewCompanyRepo(testDB).Create(company))
	return company
}

func seedEmployee(t *testing.T, companyID, name string, salary int64, active bool) *models.Employee {
	t.Helper()
	employee := &models.Employee{
		CompanyID:     companyID,
		Name:          name,
		Email:         name + "@acme.test",
		WalletAddress: "0x" + uuid.New().String(),
		Position:      "Engineer",
		Department:    "IT",
		Salary:        decimal.NewFromInt(salary),
		IsActive:      active,
	}
	require.NoError(t, repository.NewEmployeeRepo(testDB).Create(employee))
	return employee
}
