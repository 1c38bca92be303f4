package handlers

import (
	"time"

	"paystream/middleware"
	"paystream/models"
	"paystream/repository"
	"paystream/types"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dashboard & Overview
type DashboardStats struct {
	TotalEmployees  int              `json:"total_employees"`
	ActiveEmployees int              `json:"active_employees"`
	MonthlyPayroll  decimal.Decimal  `json:"monthly_payroll"`
	TotalPaid       decimal.Decimal  `json:"total_paid"`
	SuccessRate     float64          `json:"success_rate"`
	DepartmentStats []DepartmentStat `json:"department_stats"`
	RecentPayments  []models.Payment `json:"recent_payments"`
	LastPaymentDate *time.Time       `json:"last_payment_date,omitempty"`
	NextPaymentDate *time.Time       `json:"next_payment_date,omitempty"`
	ScheduleState   string           `json:"schedule_state"`
}

type DepartmentStat struct {
	Name          string          `json:"name"`
	EmployeeCount int             `json:"employee_count"`
	TotalSalary   decimal.Decimal `json:"total_salary"`
}

// GetDashboard aggregates the numbers the dashboard renders: roster
// totals, payroll commitment, payment success rate, department
// distribution and recent payment history.
func GetDashboard(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	employees, err := Employees.ListByCompany(companyID, repository.EmployeeFilters{})
	if err != nil {
		utils.Logger.Error("Failed to fetch employees for dashboard", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}
	payments, err := Payments.ListByCompany(companyID, "")
	if err != nil {
		utils.Logger.Error("Failed to fetch payments for dashboard", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	stats := DashboardStats{
		TotalEmployees: len(employees),
		MonthlyPayroll: decimal.Zero,
		TotalPaid:      decimal.Zero,
	}

	departments := map[string]*DepartmentStat{}
	for _, emp := range employees {
		if !emp.IsActive {
			continue
		}
		stats.ActiveEmployees++
		stats.MonthlyPayroll = stats.MonthlyPayroll.Add(emp.Salary)

		dept := departments[emp.Department]
		if dept == nil {
			dept = &DepartmentStat{Name: emp.Department, TotalSalary: decimal.Zero}
			departments[emp.Department] = dept
		}
		dept.EmployeeCount++
		dept.TotalSalary = dept.TotalSalary.Add(emp.Salary)
	}
	stats.DepartmentStats = make([]DepartmentStat, 0, len(departments))
	for _, dept := range departments {
		stats.DepartmentStats = append(stats.DepartmentStats, *dept)
	}

	var completed, failed int
	for _, payment := range payments {
		switch payment.Status {
		case models.PaymentCompleted:
			completed++
			stats.TotalPaid = stats.TotalPaid.Add(payment.Amount)
			if stats.LastPaymentDate == nil || payment.PaymentDate.After(*stats.LastPaymentDate) {
				d := payment.PaymentDate
				stats.LastPaymentDate = &d
			}
		case models.PaymentFailed:
			failed++
		}
	}
	if completed+failed > 0 {
		stats.SuccessRate = float64(completed) / float64(completed+failed) * 100
	}

	if len(payments) > 10 {
		stats.RecentPayments = payments[:10]
	} else {
		stats.RecentPayments = payments
	}

	if next, err := Scheduler.NextPaymentDate(companyID); err == nil {
		stats.NextPaymentDate = &next
	}
	if state, err := Scheduler.GetScheduleState(companyID); err == nil {
		stats.ScheduleState = state
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    stats,
	})
}
