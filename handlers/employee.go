package handlers

import (
	"errors"

	"paystream/middleware"
	"paystream/models"
	"paystream/repository"
	"paystream/types"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AddEmployeeRequest struct {
	Name          string          `json:"name" validate:"required"`
	Email         string          `json:"email" validate:"required,email"`
	WalletAddress string          `json:"wallet_address" validate:"required"`
	Position      string          `json:"position"`
	Department    string          `json:"department"`
	Salary        decimal.Decimal `json:"salary" validate:"required,gt=0"`
}

func AddEmployee(c *fiber.Ctx) error {
	var req AddEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}
	if req.Name == "" || req.WalletAddress == "" {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Employee name and wallet address are required",
		})
	}
	if !req.Salary.IsPositive() {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   "Salary must be positive",
		})
	}

	employee := models.Employee{
		CompanyID:     middleware.CompanyID(c),
		Name:          req.Name,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		Position:      req.Position,
		Department:    req.Department,
		Salary:        req.Salary,
		IsActive:      true,
	}
	if err := Employees.Create(&employee); err != nil {
		utils.Logger.Error("Failed to create employee", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Employee added successfully",
		Data:    employee,
	})
}

func GetAllEmployees(c *fiber.Ctx) error {
	filters := repository.EmployeeFilters{
		Department: c.Query("department"),
		ActiveOnly: c.QueryBool("active_only"),
	}
	if from := c.Query("salary_from"); from != "" {
		d, err := decimal.NewFromString(from)
		if err != nil {
			return c.Status(400).JSON(types.APIResponse{
				Success: false,
				Error:   "Invalid salary_from",
			})
		}
		filters.SalaryFrom = d
	}
	if to := c.Query("salary_to"); to != "" {
		d, err := decimal.NewFromString(to)
		if err != nil {
			return c.Status(400).JSON(types.APIResponse{
				Success: false,
				Error:   "Invalid salary_to",
			})
		}
		filters.SalaryTo = d
	}

	employees, err := Employees.ListByCompany(middleware.CompanyID(c), filters)
	if err != nil {
		utils.Logger.Error("Failed to fetch employees", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data:    employees,
	})
}

// ToggleEmployeeStatus flips an employee between active and inactive.
// Inactive employees are skipped by payroll runs (soft delete).
func ToggleEmployeeStatus(c *fiber.Ctx) error {
	employee, err := Employees.Get(c.Params("id"))
	if err != nil {
		return employeeError(c, err)
	}
	if employee.CompanyID != middleware.CompanyID(c) {
		return c.Status(403).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}

	updated, err := Employees.Update(employee.ID, map[string]interface{}{
		"is_active": !employee.IsActive,
	})
	if err != nil {
		return employeeError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Employee status updated",
		Data:    updated,
	})
}

// RemoveEmployee hard-deletes an employee record.
func RemoveEmployee(c *fiber.Ctx) error {
	employee, err := Employees.Get(c.Params("id"))
	if err != nil {
		return employeeError(c, err)
	}
	if employee.CompanyID != middleware.CompanyID(c) {
		return c.Status(403).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}

	if err := Employees.Delete(employee.ID); err != nil {
		return employeeError(c, err)
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Employee removed successfully",
	})
}

func employeeError(c *fiber.Ctx, err error) error {
	var nf *types.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(404).JSON(types.APIResponse{
			Success: false,
			Error:   nf.Error(),
		})
	}
	utils.Logger.Error("Employee operation failed", zap.Error(err))
	return c.Status(500).JSON(types.APIResponse{
		Success: false,
		Error:   types.ErrDatabaseError,
	})
}
