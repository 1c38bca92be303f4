package handlers

import (
	"errors"

	"paystream/middleware"
	"paystream/types"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetSchedulerStatus reports the scheduler state plus the current
// company's cycle classification.
func GetSchedulerStatus(c *fiber.Ctx) error {
	data := fiber.Map{
		"status": Scheduler.GetStatus(),
	}

	state, err := Scheduler.GetScheduleState(middleware.CompanyID(c))
	if err != nil {
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(404).JSON(types.APIResponse{
				Success: false,
				Error:   nf.Error(),
			})
		}
		utils.Logger.Error("Failed to compute schedule state", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInternalError,
		})
	}
	data["schedule_state"] = state

	next, err := Scheduler.NextPaymentDate(middleware.CompanyID(c))
	if err == nil {
		data["next_payment_date"] = next
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    data,
	})
}

func StartScheduler(c *fiber.Ctx) error {
	Scheduler.Start()
	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Scheduler started",
	})
}

func StopScheduler(c *fiber.Ctx) error {
	Scheduler.Stop()
	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Scheduler stopped",
	})
}

// TriggerPayroll runs payroll for the current company immediately,
// bypassing the due-check. A run already in flight is not doubled.
func TriggerPayroll(c *fiber.Ctx) error {
	report, err := Scheduler.TriggerNow(c.Context(), middleware.CompanyID(c))
	if err != nil {
		if errors.Is(err, types.ErrRunInProgress) {
			return c.Status(409).JSON(types.APIResponse{
				Success: false,
				Error:   err.Error(),
			})
		}
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(404).JSON(types.APIResponse{
				Success: false,
				Error:   nf.Error(),
			})
		}
		utils.Logger.Error("Payroll trigger failed", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInternalError,
		})
	}

	message := "All payments processed successfully"
	if report.FailureCount > 0 {
		message = "Payroll finished with failures"
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: message,
		Data:    report,
	})
}
