package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"paystream/models"
	"paystream/repository"
	"paystream/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Scheduler states.
const (
	SchedulerRunning = "running"
	SchedulerStopped = "stopped"
)

// PaymentResult is the outcome of one payment attempt within a run.
type PaymentResult struct {
	PaymentID       string `json:"payment_id"`
	EmployeeID      string `json:"employee_id"`
	Status          string `json:"status"` // completed, failed
	TransactionHash string `json:"transaction_hash,omitempty"`
	Error           string `json:"error,omitempty"`
}

// PayrollReport aggregates a batch run. SuccessCount+FailureCount
// always equals len(Results).
type PayrollReport struct {
	CompanyID    string          `json:"company_id"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	Results      []PaymentResult `json:"results"`
}

// PaymentScheduler owns the recurring payment cadence: it periodically
// checks every active company for a due cycle, fans out one payment
// attempt per active employee, tolerates individual failures, and
// persists every outcome. At most one run per company is ever in
// flight.
type PaymentScheduler struct {
	companies *repository.CompanyRepo
	employees *repository.EmployeeRepo
	payments  *repository.PaymentRepo
	gateway   WalletGateway
	logger    *zap.Logger

	// CheckInterval is the due-check cadence, hourly by default.
	// PaymentTimeout bounds each individual gateway call. Both must be
	// set before Start.
	CheckInterval  time.Duration
	PaymentTimeout time.Duration

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	inFlight map[string]bool
}

func NewPaymentScheduler(
	companies *repository.CompanyRepo,
	employees *repository.EmployeeRepo,
	payments *repository.PaymentRepo,
	gateway WalletGateway,
	logger *zap.Logger,
) *PaymentScheduler {
	return &PaymentScheduler{
		companies:      companies,
		employees:      employees,
		payments:       payments,
		gateway:        gateway,
		logger:         logger,
		CheckInterval:  time.Hour,
		PaymentTimeout: 30 * time.Second,
		inFlight:       make(map[string]bool),
	}
}

// Start transitions the scheduler to running, performs one immediate
// due-check and arms the recurring timer. No-op when already running.
func (s *PaymentScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.logger.Info("payment scheduler started",
		zap.Duration("check_interval", s.CheckInterval))
	go s.loop(stop)
}

// Stop cancels the timer. Idempotent.
func (s *PaymentScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
	s.logger.Info("payment scheduler stopped")
}

// GetStatus returns running or stopped.
func (s *PaymentScheduler) GetStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return SchedulerRunning
	}
	return SchedulerStopped
}

func (s *PaymentScheduler) loop(stop chan struct{}) {
	s.RunDueChecks(context.Background())

	ticker := time.NewTicker(s.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.RunDueChecks(context.Background())
		case <-stop:
			return
		}
	}
}

// RunDueChecks evaluates every active company and runs payroll where a
// cycle is due or a scheduled bonus has come up. Companies run in
// parallel within one tick; a company with a run already in flight is
// skipped, never doubled.
func (s *PaymentScheduler) RunDueChecks(ctx context.Context) {
	companies, err := s.companies.ListActive()
	if err != nil {
		s.logger.Error("due-check failed to list companies", zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	for i := range companies {
		wg.Add(1)
		go func(company *models.Company) {
			defer wg.Done()
			s.checkCompany(ctx, company)
		}(&companies[i])
	}
	wg.Wait()
}

// checkCompany runs one company's due payments. A due recurring cycle
// pays the full roster plus any due bonuses; a due bonus alone runs
// without pulling the monthly roster in early.
func (s *PaymentScheduler) checkCompany(ctx context.Context, company *models.Company) {
	cycleDue, err := s.cycleDue(company)
	if err != nil {
		s.logger.Error("due-check failed",
			zap.String("company_id", company.ID), zap.Error(err))
		return
	}
	if !cycleDue {
		bonuses, err := s.payments.DueScheduled(company.ID, time.Now().UTC())
		if err != nil {
			s.logger.Error("due-check failed to list scheduled payments",
				zap.String("company_id", company.ID), zap.Error(err))
			return
		}
		if len(bonuses) == 0 {
			return
		}
	}
	if _, err := s.runPayroll(ctx, company, cycleDue); err != nil {
		if err == types.ErrRunInProgress {
			return
		}
		s.logger.Error("payroll run failed",
			zap.String("company_id", company.ID), zap.Error(err))
	}
}

// cycleDue reports whether the recurring cycle has been reached.
func (s *PaymentScheduler) cycleDue(company *models.Company) (bool, error) {
	last, err := s.lastCompleted(company)
	if err != nil {
		return false, err
	}
	return IsDue(time.Now().UTC(), company.PaymentSchedule, last)
}

// lastCompleted resolves the anchor date for due computation: the
// latest completed monthly payment, else the company's creation date.
// Bonus payments never move the recurring cycle.
func (s *PaymentScheduler) lastCompleted(company *models.Company) (time.Time, error) {
	last, err := s.payments.LastCompletedDate(company.ID)
	if err != nil {
		return time.Time{}, err
	}
	if last.IsZero() {
		return company.CreatedAt, nil
	}
	return last, nil
}

// GetScheduleState classifies a company's cycle as due, upcoming or
// scheduled for display.
func (s *PaymentScheduler) GetScheduleState(companyID string) (string, error) {
	company, err := s.companies.Get(companyID)
	if err != nil {
		return "", err
	}
	last, err := s.lastCompleted(company)
	if err != nil {
		return "", err
	}
	return ScheduleState(time.Now().UTC(), company.PaymentSchedule, last)
}

// NextPaymentDate returns when the company's next recurring payment
// falls.
func (s *PaymentScheduler) NextPaymentDate(companyID string) (time.Time, error) {
	company, err := s.companies.Get(companyID)
	if err != nil {
		return time.Time{}, err
	}
	last, err := s.lastCompleted(company)
	if err != nil {
		return time.Time{}, err
	}
	return NextDueDate(company.PaymentSchedule, last)
}

// TriggerNow runs payroll for one company immediately, bypassing the
// due-check. Returns types.ErrRunInProgress when a run is already in
// flight for the company.
func (s *PaymentScheduler) TriggerNow(ctx context.Context, companyID string) (*PayrollReport, error) {
	company, err := s.companies.Get(companyID)
	if err != nil {
		return nil, err
	}
	return s.runPayroll(ctx, company, true)
}

func (s *PaymentScheduler) beginRun(companyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[companyID] {
		return false
	}
	s.inFlight[companyID] = true
	return true
}

func (s *PaymentScheduler) endRun(companyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, companyID)
}

// runPayroll executes one batch run under the company's single-flight
// guard: one concurrent attempt per active employee when the recurring
// cycle is included, plus any scheduled bonuses whose date has passed,
// all settled before the report is finalized.
func (s *PaymentScheduler) runPayroll(ctx context.Context, company *models.Company, includeRoster bool) (*PayrollReport, error) {
	if !s.beginRun(company.ID) {
		return nil, types.ErrRunInProgress
	}
	defer s.endRun(company.ID)

	var roster []models.Employee
	if includeRoster {
		var err error
		roster, err = s.employees.ListActive(company.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster: %w", err)
		}
	}
	bonuses, err := s.payments.DueScheduled(company.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled payments: %w", err)
	}

	results := make([]PaymentResult, len(roster)+len(bonuses))
	var wg sync.WaitGroup

	for i := range roster {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.payEmployee(ctx, company, &roster[i])
		}(i)
	}
	for j := range bonuses {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			results[len(roster)+j] = s.executeScheduled(ctx, &bonuses[j])
		}(j)
	}
	wg.Wait()

	report := &PayrollReport{CompanyID: company.ID, Results: results}
	for _, r := range results {
		if r.Status == models.PaymentCompleted {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}

	s.logger.Info("payroll run finished",
		zap.String("company_id", company.ID),
		zap.Int("success", report.SuccessCount),
		zap.Int("failed", report.FailureCount))

	return report, nil
}

// payEmployee makes exactly one payment attempt: a pending record is
// written first, then moved to completed or failed once the gateway
// call settles. Failures never propagate out of the run.
func (s *PaymentScheduler) payEmployee(ctx context.Context, company *models.Company, employee *models.Employee) PaymentResult {
	payment := &models.Payment{
		CompanyID:   company.ID,
		EmployeeID:  employee.ID,
		Amount:      employee.Salary,
		PaymentDate: time.Now().UTC(),
		Status:      models.PaymentPending,
		PaymentType: models.PaymentTypeMonthly,
	}
	if err := s.payments.Create(payment); err != nil {
		s.logger.Error("failed to create payment record",
			zap.String("employee_id", employee.ID), zap.Error(err))
		return PaymentResult{EmployeeID: employee.ID, Status: models.PaymentFailed, Error: err.Error()}
	}

	return s.settle(ctx, payment, employee.WalletAddress)
}

// executeScheduled runs a scheduled bonus payment whose date has
// passed.
func (s *PaymentScheduler) executeScheduled(ctx context.Context, payment *models.Payment) PaymentResult {
	employee, err := s.employees.Get(payment.EmployeeID)
	if err != nil {
		s.markFailed(payment.ID, err)
		return PaymentResult{PaymentID: payment.ID, EmployeeID: payment.EmployeeID, Status: models.PaymentFailed, Error: err.Error()}
	}
	return s.settle(ctx, payment, employee.WalletAddress)
}

// settle submits one payment through the gateway under the per-attempt
// timeout and records the terminal outcome.
func (s *PaymentScheduler) settle(ctx context.Context, payment *models.Payment, toAddress string) PaymentResult {
	callCtx, cancel := context.WithTimeout(ctx, s.PaymentTimeout)
	defer cancel()

	hash, err := s.gateway.SubmitPayment(callCtx, toAddress, payment.Amount)
	if err != nil {
		s.markFailed(payment.ID, err)
		return PaymentResult{PaymentID: payment.ID, EmployeeID: payment.EmployeeID, Status: models.PaymentFailed, Error: err.Error()}
	}

	if _, err := s.payments.UpdateStatus(payment.ID, models.PaymentCompleted, map[string]interface{}{
		"transaction_hash": hash,
	}); err != nil {
		s.logger.Error("failed to record completed payment",
			zap.String("payment_id", payment.ID), zap.Error(err))
		return PaymentResult{PaymentID: payment.ID, EmployeeID: payment.EmployeeID, Status: models.PaymentFailed, Error: err.Error()}
	}

	return PaymentResult{
		PaymentID:       payment.ID,
		EmployeeID:      payment.EmployeeID,
		Status:          models.PaymentCompleted,
		TransactionHash: hash,
	}
}

func (s *PaymentScheduler) markFailed(paymentID string, cause error) {
	if _, err := s.payments.UpdateStatus(paymentID, models.PaymentFailed, map[string]interface{}{
		"error_message": cause.Error(),
	}); err != nil {
		s.logger.Error("failed to record failed payment",
			zap.String("payment_id", paymentID), zap.Error(err))
	}
}

// ScheduleBonus creates a one-off bonus payment that an explicit run
// picks up once its date has passed.
func (s *PaymentScheduler) ScheduleBonus(employeeID string, amount decimal.Decimal, date time.Time) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("bonus amount must be positive")
	}
	employee, err := s.employees.Get(employeeID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		CompanyID:   employee.CompanyID,
		EmployeeID:  employee.ID,
		Amount:      amount,
		PaymentDate: date,
		Status:      models.PaymentScheduled,
		PaymentType: models.PaymentTypeBonus,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// CancelScheduledPayment moves a scheduled payment to cancelled.
// Payments in any other state are not cancellable.
func (s *PaymentScheduler) CancelScheduledPayment(paymentID string) (*models.Payment, error) {
	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentScheduled {
		return nil, &types.NotCancellableError{PaymentID: paymentID, Status: payment.Status}
	}
	return s.payments.UpdateStatus(paymentID, models.PaymentCancelled, nil)
}
