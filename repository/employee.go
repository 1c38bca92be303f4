package repository

import (
	"paystream/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EmployeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

// EmployeeFilters represents the available roster filter options.
type EmployeeFilters struct {
	Department string
	ActiveOnly bool
	SalaryFrom decimal.Decimal
	SalaryTo   decimal.Decimal
}

func (r *EmployeeRepo) Create(employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = newID()
	}
	if employee.JoinDate.IsZero() {
		employee.JoinDate = now()
	}
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now()
	}
	employee.UpdatedAt = employee.CreatedAt
	return r.db.Create(employee).Error
}

func (r *EmployeeRepo) Get(id string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.First(&employee, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "employee", id)
	}
	return &employee, nil
}

// ListByCompany returns a company's roster, narrowed by filters.
func (r *EmployeeRepo) ListByCompany(companyID string, filters EmployeeFilters) ([]models.Employee, error) {
	query := r.db.Where("company_id = ?", companyID)

	if filters.Department != "" {
		query = query.Where("department = ?", filters.Department)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.SalaryFrom.IsPositive() {
		query = query.Where("salary >= ?", filters.SalaryFrom)
	}
	if filters.SalaryTo.IsPositive() {
		query = query.Where("salary <= ?", filters.SalaryTo)
	}

	var employees []models.Employee
	err := query.Order("created_at").Find(&employees).Error
	return employees, err
}

// ListActive returns the active roster for one payroll run.
func (r *EmployeeRepo) ListActive(companyID string) ([]models.Employee, error) {
	return r.ListByCompany(companyID, EmployeeFilters{ActiveOnly: true})
}

func (r *EmployeeRepo) Search(substring string) ([]models.Employee, error) {
	var employees []models.Employee
	pattern := "%" + substring + "%"
	err := r.db.
		Where("id LIKE ? OR company_id LIKE ? OR name LIKE ? OR email LIKE ? OR position LIKE ? OR department LIKE ? OR wallet_address LIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern, pattern).
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepo) Update(id string, fields map[string]interface{}) (*models.Employee, error) {
	employee, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = now()
	if err := r.db.Model(employee).Updates(fields).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *EmployeeRepo) Delete(id string) error {
	res := r.db.Delete(&models.Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "employee", id)
	}
	return nil
}
