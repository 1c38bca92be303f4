package repository

import (
	"time"

	"paystream/models"
	"paystream/types"

	"gorm.io/gorm"
)

type PaymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func (r *PaymentRepo) Create(payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = newID()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	if payment.PaymentType == "" {
		payment.PaymentType = models.PaymentTypeMonthly
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now()
	}
	payment.UpdatedAt = payment.CreatedAt
	return r.db.Create(payment).Error
}

func (r *PaymentRepo) Get(id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &payment, nil
}

// ListByCompany returns a company's payments, newest first, optionally
// narrowed to one status.
func (r *PaymentRepo) ListByCompany(companyID, status string) ([]models.Payment, error) {
	query := r.db.Where("company_id = ?", companyID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var payments []models.Payment
	err := query.Order("payment_date DESC").Find(&payments).Error
	return payments, err
}

// LastCompletedDate returns the most recent completed monthly payment
// date for a company, or the zero time when none exists. Completed
// bonuses are excluded so they never shift the recurring cycle.
func (r *PaymentRepo) LastCompletedDate(companyID string) (time.Time, error) {
	var payment models.Payment
	err := r.db.
		Where("company_id = ? AND status = ? AND payment_type = ?",
			companyID, models.PaymentCompleted, models.PaymentTypeMonthly).
		Order("payment_date DESC").
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return payment.PaymentDate, nil
}

// DueScheduled returns scheduled payments whose date has passed.
func (r *PaymentRepo) DueScheduled(companyID string, asOf time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.
		Where("company_id = ? AND status = ? AND payment_date <= ?", companyID, models.PaymentScheduled, asOf).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepo) Search(substring string) ([]models.Payment, error) {
	var payments []models.Payment
	pattern := "%" + substring + "%"
	err := r.db.
		Where("id LIKE ? OR company_id LIKE ? OR employee_id LIKE ? OR status LIKE ? OR payment_type LIKE ? OR transaction_hash LIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern).
		Find(&payments).Error
	return payments, err
}

// UpdateStatus moves a payment to a new status, enforcing the
// transition table. extra fields (transaction hash, error message) are
// written in the same update.
func (r *PaymentRepo) UpdateStatus(id, newStatus string, extra map[string]interface{}) (*models.Payment, error) {
	payment, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(payment.Status, newStatus) {
		return nil, &types.InvalidTransitionError{PaymentID: id, From: payment.Status, To: newStatus}
	}

	fields := map[string]interface{}{
		"status":     newStatus,
		"updated_at": now(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := r.db.Model(payment).Updates(fields).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepo) Delete(id string) error {
	res := r.db.Delete(&models.Payment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "payment", id)
	}
	return nil
}
