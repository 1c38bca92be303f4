package handlers

import (
	"paystream/repository"
	"paystream/services"

	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	Companies *repository.CompanyRepo
	Employees *repository.EmployeeRepo
	Payments  *repository.PaymentRepo
	Gateway   services.WalletGateway
	Scheduler *services.PaymentScheduler
)

func InitHandlers(db *gorm.DB, gateway services.WalletGateway, scheduler *services.PaymentScheduler) {
	DB = db
	Companies = repository.NewCompanyRepo(db)
	Employees = repository.NewEmployeeRepo(db)
	Payments = repository.NewPaymentRepo(db)
	Gateway = gateway
	Scheduler = scheduler
}
