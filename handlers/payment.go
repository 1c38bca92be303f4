package handlers

import (
	"errors"
	"time"

	"paystream/middleware"
	"paystream/types"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ScheduleBonusRequest struct {
	EmployeeID  string          `json:"employee_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentDate time.Time       `json:"payment_date" validate:"required"`
}

func GetPayments(c *fiber.Ctx) error {
	payments, err := Payments.ListByCompany(middleware.CompanyID(c), c.Query("status"))
	if err != nil {
		utils.Logger.Error("Failed to fetch payments", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    payments,
	})
}

// ScheduleBonus creates a one-off bonus payment in scheduled state.
func ScheduleBonus(c *fiber.Ctx) error {
	var req ScheduleBonusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}
	if !req.Amount.IsPositive() {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Bonus amount must be positive",
		})
	}

	employee, err := Employees.Get(req.EmployeeID)
	if err != nil {
		return employeeError(c, err)
	}
	if employee.CompanyID != middleware.CompanyID(c) {
		return c.Status(403).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}

	payment, err := Scheduler.ScheduleBonus(req.EmployeeID, req.Amount, req.PaymentDate)
	if err != nil {
		utils.Logger.Error("Failed to schedule bonus", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Bonus payment scheduled",
		Data:    payment,
	})
}

// CancelPayment cancels a scheduled payment before it runs.
func CancelPayment(c *fiber.Ctx) error {
	payment, err := Payments.Get(c.Params("id"))
	if err != nil {
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(404).JSON(types.APIResponse{
				Success: false,
				Error:   nf.Error(),
			})
		}
		utils.Logger.Error("Failed to fetch payment", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}
	if payment.CompanyID != middleware.CompanyID(c) {
		return c.Status(403).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}

	cancelled, err := Scheduler.CancelScheduledPayment(payment.ID)
	if err != nil {
		var nc *types.NotCancellableError
		if errors.As(err, &nc) {
			return c.Status(409).JSON(types.APIResponse{
				Success: false,
				Error:   nc.Error(),
			})
		}
		utils.Logger.Error("Failed to cancel payment", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Payment cancelled",
		Data:    cancelled,
	})
}
