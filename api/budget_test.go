package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"cashcompass/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func budgetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "amount", "period", "created_at", "updated_at", "deleted_at"})
}

func TestBudgetHandler_Upsert_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 没有已有预算
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget", NewBudgetHandler().Upsert)

	body := `{"amount":1000,"period":"monthly"}`
	req := httptest.NewRequest("POST", "/budget", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Upsert_Update(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(1).
		WillReturnRows(budgetRows().
			AddRow(1, 1, 500.0, models.BudgetPeriodWeekly, now, now, nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget", NewBudgetHandler().Upsert)

	body := `{"amount":1200,"period":"monthly"}`
	req := httptest.NewRequest("POST", "/budget", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "更新成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1200), data["amount"])
	assert.Equal(t, models.BudgetPeriodMonthly, data["period"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Upsert_InvalidPeriod(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget", NewBudgetHandler().Upsert)

	body := `{"amount":1000,"period":"yearly"}`
	req := httptest.NewRequest("POST", "/budget", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "无效的预算周期")
}

func TestBudgetHandler_Upsert_ZeroAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget", NewBudgetHandler().Upsert)

	// gt=0 校验拦截非正金额
	body := `{"amount":0,"period":"monthly"}`
	req := httptest.NewRequest("POST", "/budget", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestBudgetHandler_Get_NoBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budget", NewBudgetHandler().Get)

	req := httptest.NewRequest("GET", "/budget", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Nil(t, data["budget"])
	assert.Nil(t, data["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Get_WithStatus(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(1).
		WillReturnRows(budgetRows().
			AddRow(1, 1, 1000.0, models.BudgetPeriodMonthly, now, now, nil))

	// 本月消费 850 => 85%，warning=true
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WithArgs(1).
		WillReturnRows(expenseRows().
			AddRow(1, 1, 500.0, "Rent", "rent", now, now, now, nil).
			AddRow(2, 1, 350.0, "Groceries", "food", now, now, now, nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budget", NewBudgetHandler().Get)

	req := httptest.NewRequest("GET", "/budget", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	status := data["status"].(map[string]interface{})
	assert.Equal(t, float64(850), status["spent"])
	assert.Equal(t, float64(150), status["remaining"])
	assert.InDelta(t, 85.0, status["percentage"].(float64), 1e-9)
	assert.Equal(t, true, status["warning"])
	require.NoError(t, mock.ExpectationsWereMet())
}
