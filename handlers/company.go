package handlers

import (
	"errors"

	"paystream/middleware"
	"paystream/models"
	"paystream/types"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RegisterCompanyRequest struct {
	Name            string          `json:"name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	PaymentSchedule string          `json:"payment_schedule" validate:"required,oneof=weekly biweekly monthly"`
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
}

// RegisterCompany creates a company for the connected wallet. One
// company per wallet address.
func RegisterCompany(c *fiber.Ctx) error {
	wallet := middleware.WalletAddress(c)
	if wallet == "" {
		return c.Status(401).JSON(types.APIResponse{
			Success: false,
			Error:   "Connect a wallet first",
		})
	}

	var req RegisterCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}
	if req.Name == "" || req.Email == "" {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Company name and email are required",
		})
	}
	if !models.ValidSchedule(req.PaymentSchedule) {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   (&types.InvalidScheduleError{Schedule: req.PaymentSchedule}).Error(),
		})
	}

	existing, err := Companies.GetByWallet(wallet)
	if err != nil {
		utils.Logger.Error("Failed to look up company", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}
	if existing != nil {
		return c.Status(409).JSON(types.APIResponse{
			Success: false,
			Error:   "A company is already registered for this wallet",
		})
	}

	company := models.Company{
		Name:            req.Name,
		Email:           req.Email,
		WalletAddress:   wallet,
		PaymentSchedule: req.PaymentSchedule,
		MonthlyBudget:   req.MonthlyBudget,
		IsActive:        true,
	}
	if err := Companies.Create(&company); err != nil {
		utils.Logger.Error("Failed to create company", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Company registered successfully",
		Data:    company,
	})
}

func GetCompany(c *fiber.Ctx) error {
	company, err := Companies.Get(c.Params("id"))
	if err != nil {
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(404).JSON(types.APIResponse{
				Success: false,
				Error:   nf.Error(),
			})
		}
		utils.Logger.Error("Failed to fetch company", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}
	if company.WalletAddress != middleware.WalletAddress(c) {
		return c.Status(403).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    company,
	})
}

// UpdateCompany changes company settings. Only the payment schedule,
// budget, name and email are writable.
func UpdateCompany(c *fiber.Ctx) error {
	if c.Params("id") != middleware.CompanyID(c) {
		return c.Status(403).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}

	var updateData map[string]interface{}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	allowedFields := map[string]bool{
		"name":             true,
		"email":            true,
		"payment_schedule": true,
		"monthly_budget":   true,
		"is_active":        true,
	}
	for field := range updateData {
		if !allowedFields[field] {
			delete(updateData, field)
		}
	}

	if schedule, ok := updateData["payment_schedule"].(string); ok {
		if !models.ValidSchedule(schedule) {
			return c.Status(400).JSON(types.APIResponse{
				Success: false,
				Error:   (&types.InvalidScheduleError{Schedule: schedule}).Error(),
			})
		}
	}

	company, err := Companies.Update(c.Params("id"), updateData)
	if err != nil {
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(404).JSON(types.APIResponse{
				Success: false,
				Error:   nf.Error(),
			})
		}
		utils.Logger.Error("Failed to update company", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Company updated successfully",
		Data:    company,
	})
}
