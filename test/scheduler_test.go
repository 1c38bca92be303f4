package test

import (
	"context"
	"testing"
	"time"

	"paystream/models"
	"paystream/repository"
	"paystream/services"
	"paystream/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollRunAllSuccess(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	seedEmployee(t, company.ID, "alice", 1000, true)
	seedEmployee(t, company.ID, "bob", 2000, true)
	seedEmployee(t, company.ID, "carol", 3000, true)

	report, err := testScheduler.TriggerNow(context.Background(), company.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 0, report.FailureCount)
	assert.Len(t, report.Results, 3)
	for _, result := range report.Results {
		assert.Equal(t, models.PaymentCompleted, result.Status)
		assert.NotEmpty(t, result.TransactionHash)
	}

	payments, err := repository.NewPaymentRepo(testDB).ListByCompany(company.ID, models.PaymentCompleted)
	require.NoError(t, err)
	require.Len(t, payments, 3)

	total := decimal.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
		assert.NotEmpty(t, payment.TransactionHash)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(6000)), "total paid %s", total)
}

func TestPayrollRunPartialFailure(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	seedEmployee(t, company.ID, "alice", 1000, true)
	bob := seedEmployee(t, company.ID, "bob", 2000, true)
	seedEmployee(t, company.ID, "carol", 3000, true)

	testGateway.FailAddresses = map[string]bool{bob.WalletAddress: true}

	report, err := testScheduler.TriggerNow(context.Background(), company.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)

	payments, err := repository.NewPaymentRepo(testDB).ListByCompany(company.ID, "")
	require.NoError(t, err)
	require.Len(t, payments, 3)

	for _, payment := range payments {
		if payment.EmployeeID == bob.ID {
			assert.Equal(t, models.PaymentFailed, payment.Status)
			assert.Empty(t, payment.TransactionHash)
			assert.NotEmpty(t, payment.ErrorMessage)
		} else {
			assert.Equal(t, models.PaymentCompleted, payment.Status)
		}
	}
}

// Every run writes exactly one payment record per active employee, and
// the report never loses a result.
func TestPayrollRunRecordsEveryAttempt(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleBiweekly, time.Now().UTC().AddDate(0, 0, -15))
	for _, name := range []string{"a", "b", "c", "d"} {
		seedEmployee(t, company.ID, name, 1500, true)
	}
	seedEmployee(t, company.ID, "inactive", 9000, false)

	report, err := testScheduler.TriggerNow(context.Background(), company.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, report.SuccessCount+report.FailureCount)
	assert.Len(t, report.Results, 4)

	var count int64
	testDB.Model(&models.Payment{}).Where("company_id = ?", company.ID).Count(&count)
	assert.EqualValues(t, 4, count)
}

// blockingGateway holds every SubmitPayment call until released so a
// test can observe a run mid-flight.
type blockingGateway struct {
	*services.MockGateway
	started chan struct{}
	release chan struct{}
}

func (g *blockingGateway) SubmitPayment(ctx context.Context, toAddress string, amount decimal.Decimal) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return g.MockGateway.SubmitPayment(ctx, toAddress, amount)
}

func TestTriggerNowSingleFlight(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	seedEmployee(t, company.ID, "alice", 1000, true)

	gateway := &blockingGateway{
		MockGateway: testGateway,
		started:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	scheduler := NewTestScheduler(gateway)

	type runResult struct {
		report *services.PayrollReport
		err    error
	}
	done := make(chan runResult, 1)
	go func() {
		report, err := scheduler.TriggerNow(context.Background(), company.ID)
		done <- runResult{report, err}
	}()

	<-gateway.started

	_, err := scheduler.TriggerNow(context.Background(), company.ID)
	assert.ErrorIs(t, err, types.ErrRunInProgress)

	close(gateway.release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, 1, first.report.SuccessCount)

	// Only the first run wrote a payment record.
	var count int64
	testDB.Model(&models.Payment{}).Where("company_id = ?", company.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestScheduleBonusAndCancel(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	alice := seedEmployee(t, company.ID, "alice", 1000, true)

	date := time.Now().UTC().AddDate(0, 0, 3)
	payment, err := testScheduler.ScheduleBonus(alice.ID, decimal.NewFromInt(500), date)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentScheduled, payment.Status)
	assert.Equal(t, models.PaymentTypeBonus, payment.PaymentType)
	assert.Equal(t, company.ID, payment.CompanyID)

	cancelled, err := testScheduler.CancelScheduledPayment(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, cancelled.Status)

	// cancelled is terminal
	_, err = testScheduler.CancelScheduledPayment(payment.ID)
	var notCancellable *types.NotCancellableError
	assert.ErrorAs(t, err, &notCancellable)
}

func TestCancelCompletedPaymentRejected(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	seedEmployee(t, company.ID, "alice", 1000, true)

	report, err := testScheduler.TriggerNow(context.Background(), company.ID)
	require.NoError(t, err)
	require.Equal(t, 1, report.SuccessCount)

	paymentID := report.Results[0].PaymentID
	_, err = testScheduler.CancelScheduledPayment(paymentID)
	var notCancellable *types.NotCancellableError
	require.ErrorAs(t, err, &notCancellable)

	// The payment is left untouched.
	payment, err := repository.NewPaymentRepo(testDB).Get(paymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.NotEmpty(t, payment.TransactionHash)
}

func TestScheduledBonusExecutedByRun(t *testing.T) {
	SetupTest(t)

	// Cycle not due: company created just now.
	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	alice := seedEmployee(t, company.ID, "alice", 1000, true)

	payment, err := testScheduler.ScheduleBonus(alice.ID, decimal.NewFromInt(750), time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)

	report, err := testScheduler.TriggerNow(context.Background(), company.ID)
	require.NoError(t, err)

	// One monthly attempt for the roster plus the due bonus.
	assert.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.SuccessCount)

	executed, err := repository.NewPaymentRepo(testDB).Get(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, executed.Status)
	assert.NotEmpty(t, executed.TransactionHash)
}

// A due bonus alone runs on its own date without pulling the monthly
// roster in early, and its completion leaves the recurring cycle where
// it was.
func TestDueBonusDoesNotTriggerMonthlyRoster(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	alice := seedEmployee(t, company.ID, "alice", 1000, true)

	state, err := testScheduler.GetScheduleState(company.ID)
	require.NoError(t, err)
	require.NotEqual(t, services.ScheduleStateDue, state)

	bonus, err := testScheduler.ScheduleBonus(alice.ID, decimal.NewFromInt(500), time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)

	testScheduler.RunDueChecks(context.Background())

	var monthly int64
	testDB.Model(&models.Payment{}).
		Where("company_id = ? AND payment_type = ?", company.ID, models.PaymentTypeMonthly).
		Count(&monthly)
	assert.EqualValues(t, 0, monthly)

	executed, err := repository.NewPaymentRepo(testDB).Get(bonus.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, executed.Status)

	state, err = testScheduler.GetScheduleState(company.ID)
	require.NoError(t, err)
	assert.Equal(t, services.ScheduleStateScheduled, state)
}

// Two due companies progress within the same tick: the second reaches
// the gateway while the first is still in flight.
func TestDueChecksRunCompaniesConcurrently(t *testing.T) {
	SetupTest(t)

	first := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	second := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	seedEmployee(t, first.ID, "alice", 1000, true)
	seedEmployee(t, second.ID, "bob", 2000, true)

	gateway := &blockingGateway{
		MockGateway: testGateway,
		started:     make(chan struct{}, 2),
		release:     make(chan struct{}),
	}
	scheduler := NewTestScheduler(gateway)

	done := make(chan struct{})
	go func() {
		scheduler.RunDueChecks(context.Background())
		close(done)
	}()

	<-gateway.started
	select {
	case <-gateway.started:
	case <-time.After(2 * time.Second):
		t.Fatal("second company's payment did not start while the first was in flight")
	}

	close(gateway.release)
	<-done

	for _, company := range []*models.Company{first, second} {
		payments, err := repository.NewPaymentRepo(testDB).ListByCompany(company.ID, models.PaymentCompleted)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	}
}

func TestDueCheckSkipsCompanyNotDue(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	seedEmployee(t, company.ID, "alice", 1000, true)

	testScheduler.RunDueChecks(context.Background())

	var count int64
	testDB.Model(&models.Payment{}).Where("company_id = ?", company.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDueCheckRunsDueCompany(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC().AddDate(0, 0, -31))
	seedEmployee(t, company.ID, "alice", 1000, true)
	seedEmployee(t, company.ID, "bob", 2000, true)

	testScheduler.RunDueChecks(context.Background())

	payments, err := repository.NewPaymentRepo(testDB).ListByCompany(company.ID, models.PaymentCompleted)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	SetupTest(t)

	assert.Equal(t, services.SchedulerStopped, testScheduler.GetStatus())

	testScheduler.Start()
	testScheduler.Start()
	assert.Equal(t, services.SchedulerRunning, testScheduler.GetStatus())

	testScheduler.Stop()
	testScheduler.Stop()
	assert.Equal(t, services.SchedulerStopped, testScheduler.GetStatus())
}

// A completed payment advances the due anchor: immediately after a run
// the cycle is no longer due.
func TestCompletedRunAdvancesDueDate(t *testing.T) {
	SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	seedEmployee(t, company.ID, "alice", 1000, true)

	state, err := testScheduler.GetScheduleState(company.ID)
	require.NoError(t, err)
	assert.Equal(t, services.ScheduleStateDue, state)

	_, err = testScheduler.TriggerNow(context.Background(), company.ID)
	require.NoError(t, err)

	state, err = testScheduler.GetScheduleState(company.ID)
	require.NoError(t, err)
	assert.Equal(t, services.ScheduleStateUpcoming, state)
}
