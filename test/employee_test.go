package test

import (
	"testing"
	"time"

	"paystream/models"
	"paystream/repository"
	"paystream/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEmployee(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	token := createTestToken(company.WalletAddress, company.ID)

	resp, err := app.Test(jsonRequest("POST", "/employees", token, map[string]interface{}{
		"name":           "Alice Johnson",
		"email":          "alice@acme.test",
		"wallet_address": "0xalice",
		"position":       "Engineer",
		"department":     "IT",
		"salary":         "5000",
	}))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeResponse(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, company.ID, data["company_id"])
	assert.Equal(t, true, data["is_active"])

	employees, err := repository.NewEmployeeRepo(testDB).ListActive(company.ID)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Alice Johnson", employees[0].Name)
}

func TestAddEmployeeValidation(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	token := createTestToken(company.WalletAddress, company.ID)

	// Missing wallet address
	resp, err := app.Test(jsonRequest("POST", "/employees", token, map[string]interface{}{
		"name":   "Alice",
		"salary": "5000",
	}))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	// Non-positive salary
	resp, err = app.Test(jsonRequest("POST", "/employees", token, map[string]interface{}{
		"name":           "Alice",
		"wallet_address": "0xalice",
		"salary":         "0",
	}))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetAllEmployeesFilters(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	token := createTestToken(company.WalletAddress, company.ID)

	alice := seedEmployee(t, company.ID, "alice", 3000, true)
	seedEmployee(t, company.ID, "bob", 7000, true)
	carol := seedEmployee(t, company.ID, "carol", 5000, false)
	_, err := repository.NewEmployeeRepo(testDB).Update(carol.ID, map[string]interface{}{"department": "Sales"})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest("GET", "/employees", token, nil))
	require.NoError(t, err)
	body := decodeResponse(t, resp)
	assert.Len(t, body["data"].([]interface{}), 3)

	resp, err = app.Test(jsonRequest("GET", "/employees?active_only=true", token, nil))
	require.NoError(t, err)
	body = decodeResponse(t, resp)
	assert.Len(t, body["data"].([]interface{}), 2)

	resp, err = app.Test(jsonRequest("GET", "/employees?salary_to=4000", token, nil))
	require.NoError(t, err)
	body = decodeResponse(t, resp)
	list := body["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, alice.ID, list[0].(map[string]interface{})["id"])

	resp, err = app.Test(jsonRequest("GET", "/employees?department=Sales", token, nil))
	require.NoError(t, err)
	body = decodeResponse(t, resp)
	assert.Len(t, body["data"].([]interface{}), 1)
}

func TestToggleEmployeeStatus(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	token := createTestToken(company.WalletAddress, company.ID)
	alice := seedEmployee(t, company.ID, "alice", 3000, true)

	resp, err := app.Test(jsonRequest("PATCH", "/employees/"+alice.ID+"/status", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	found, err := repository.NewEmployeeRepo(testDB).Get(alice.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	// Toggling back reactivates.
	resp, err = app.Test(jsonRequest("PATCH", "/employees/"+alice.ID+"/status", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	found, err = repository.NewEmployeeRepo(testDB).Get(alice.ID)
	require.NoError(t, err)
	assert.True(t, found.IsActive)
}

func TestRemoveEmployee(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	token := createTestToken(company.WalletAddress, company.ID)
	alice := seedEmployee(t, company.ID, "alice", 3000, true)

	resp, err := app.Test(jsonRequest("DELETE", "/employees/"+alice.ID, token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	_, err = repository.NewEmployeeRepo(testDB).Get(alice.ID)
	var nf *types.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestEmployeeCrossCompanyAccessDenied(t *testing.T) {
	app, _ := SetupTest(t)

	company := seedCompany(t, models.ScheduleMonthly, time.Now().UTC())
	other := seedCompany(t, models.ScheduleWeekly, time.Now().UTC())
	alice := seedEmployee(t, company.ID, "alice", 3000, true)

	otherToken := createTestToken(other.WalletAddress, other.ID)

	resp, err := app.Test(jsonRequest("DELETE", "/employees/"+alice.ID, otherToken, nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	resp, err = app.Test(jsonRequest("PATCH", "/employees/"+alice.ID+"/status", otherToken, nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}
