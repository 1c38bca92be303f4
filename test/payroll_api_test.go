package test

import (
	"testing"
	"time"

	"paystream/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerPayrollEndpoint(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	token := createTestToken(company.WalletAddress, company.ID)
	seedEmployee(t, company.ID, "alice", 1000, true)
	seedEmployee(t, company.ID, "bob", 2000, true)

	resp, err := app.Test(jsonRequest("POST", "/scheduler/trigger", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeResponse(t, resp)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["success_count"])
	assert.EqualValues(t, 0, data["failure_count"])
	assert.Len(t, data["results"].([]interface{}), 2)
}

func TestSchedulerStatusEndpoint(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	token := createTestToken(company.WalletAddress, company.ID)

	resp, err := app.Test(jsonRequest("GET", "/scheduler/status", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeResponse(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "stopped", data["status"])
	assert.Equal(t, "due", data["schedule_state"])

	resp, err = app.Test(jsonRequest("POST", "/scheduler/start", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	defer testScheduler.Stop()

	resp, err = app.Test(jsonRequest("GET", "/scheduler/status", token, nil))
	require.NoError(t, err)
	body = decodeResponse(t, resp)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "running", data["status"])
}

func TestBonusScheduleAndCancelEndpoints(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	token := createTestToken(company.WalletAddress, company.ID)
	alice := seedEmployee(t, company.ID, "alice", 3000, true)

	resp, err := app.Test(jsonRequest("POST", "/payments/bonus", token, map[string]interface{}{
		"employee_id":  alice.ID,
		"amount":       "500",
		"payment_date": time.Now().UTC().AddDate(0, 0, 7).Format(time.RFC3339),
	}))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeResponse(t, resp)
	data := body["data"].(map[string]interface{})
	paymentID := data["id"].(string)
	assert.Equal(t, "scheduled", data["status"])
	assert.Equal(t, "bonus", data["payment_type"])

	resp, err = app.Test(jsonRequest("POST", "/payments/"+paymentID+"/cancel", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// A second cancel hits a terminal state.
	resp, err = app.Test(jsonRequest("POST", "/payments/"+paymentID+"/cancel", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestDashboardEndpoint(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleWeekly, time.Now().UTC().AddDate(0, 0, -8))
	token := createTestToken(company.WalletAddress, company.ID)
	seedEmployee(t, company.ID, "alice", 1000, true)
	seedEmployee(t, company.ID, "bob", 2000, true)
	seedEmployee(t, company.ID, "carol", 4000, false)

	resp, err := app.Test(jsonRequest("POST", "/scheduler/trigger", token, nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(jsonRequest("GET", "/dashboard", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeResponse(t, resp)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["total_employees"])
	assert.EqualValues(t, 2, data["active_employees"])
	assert.Equal(t, "3000", data["monthly_payroll"])
	assert.Equal(t, "3000", data["total_paid"])
	assert.EqualValues(t, 100, data["success_rate"])
	assert.Len(t, data["recent_payments"].([]interface{}), 2)
}
