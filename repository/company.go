package repository

import (
	"errors"

	"paystream/models"

	"gorm.io/gorm"
)

type CompanyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Create inserts a company, assigning an ID and timestamps when absent.
func (r *CompanyRepo) Create(company *models.Company) error {
	if company.ID == "" {
		company.ID = newID()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now()
	}
	company.UpdatedAt = company.CreatedAt
	return r.db.Create(company).Error
}

func (r *CompanyRepo) Get(id string) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "company", id)
	}
	return &company, nil
}

// GetByWallet returns the company registered for a wallet address, or
// nil when none exists.
func (r *CompanyRepo) GetByWallet(address string) (*models.Company, error) {
	var company models.Company
	err := r.db.First(&company, "wallet_address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// ListActive returns every company the scheduler should run due-checks
// for.
func (r *CompanyRepo) ListActive() ([]models.Company, error) {
	var companies []models.Company
	err := r.db.Where("is_active = ?", true).Order("created_at").Find(&companies).Error
	return companies, err
}

func (r *CompanyRepo) Search(substring string) ([]models.Company, error) {
	var companies []models.Company
	pattern := "%" + substring + "%"
	err := r.db.
		Where("id LIKE ? OR name LIKE ? OR email LIKE ? OR wallet_address LIKE ?",
			pattern, pattern, pattern, pattern).
		Find(&companies).Error
	return companies, err
}

func (r *CompanyRepo) Update(id string, fields map[string]interface{}) (*models.Company, error) {
	company, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = now()
	if err := r.db.Model(company).Updates(fields).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (r *CompanyRepo) Delete(id string) error {
	res := r.db.Delete(&models.Company{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "company", id)
	}
	return nil
}
