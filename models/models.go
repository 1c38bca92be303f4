package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment schedules supported by the due-date calculator.
const (
	ScheduleWeekly   = "weekly"
	ScheduleBiweekly = "biweekly"
	ScheduleMonthly  = "monthly"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentScheduled = "scheduled"
	PaymentCancelled = "cancelled"
)

// Payment types.
const (
	PaymentTypeMonthly = "monthly"
	PaymentTypeBonus   = "bonus"
)

type Company struct {
	ID              string          `gorm:"type:uuid;primary_key" json:"id"`
	Name            string          `gorm:"not null" json:"name"`
	Email           string          `gorm:"not null" json:"email"`
	WalletAddress   string          `gorm:"not null;index" json:"wallet_address"`
	PaymentSchedule string          `gorm:"not null;default:'monthly'" json:"payment_schedule"` // weekly, biweekly, monthly
	MonthlyBudget   decimal.Decimal `gorm:"type:decimal(20,8)" json:"monthly_budget"`
	IsActive        bool            `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

type Employee struct {
	ID            string          `gorm:"type:uuid;primary_key" json:"id"`
	CompanyID     string          `gorm:"type:uuid;not null;index" json:"company_id"`
	Company       Company         `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name          string          `gorm:"not null" json:"name"`
	Email         string          `gorm:"not null" json:"email"`
	WalletAddress string          `gorm:"not null" json:"wallet_address"`
	Position      string          `json:"position"`
	Department    string          `gorm:"index" json:"department"`
	Salary        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"salary"`
	JoinDate      time.Time       `gorm:"not null" json:"join_date"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

type Payment struct {
	ID              string          `gorm:"type:uuid;primary_key" json:"id"`
	CompanyID       string          `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID      string          `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee        Employee        `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"not null;index" json:"payment_date"`
	Status          string          `gorm:"not null;default:'pending'" json:"status"`       // pending, completed, failed, scheduled, cancelled
	PaymentType     string          `gorm:"not null;default:'monthly'" json:"payment_type"` // monthly, bonus
	TransactionHash string          `json:"transaction_hash,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// paymentTransitions is the status transition table. completed, failed
// and cancelled are terminal.
var paymentTransitions = map[string][]string{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentScheduled: {PaymentCompleted, PaymentFailed, PaymentCancelled},
}

// CanTransition reports whether a payment may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transition is permitted
// out of status.
func IsTerminalStatus(status string) bool {
	return len(paymentTransitions[status]) == 0
}

// ValidSchedule reports whether s is a supported payment cadence.
func ValidSchedule(s string) bool {
	return s == ScheduleWeekly || s == ScheduleBiweekly || s == ScheduleMonthly
}
