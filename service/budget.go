package service

import (
	"time"

	"cashcompass/models"
)

// WarningThreshold 预算告警阈值（已用百分比）
const WarningThreshold = 80.0

// BudgetStatus 预算状态（派生数据，不落库）
type BudgetStatus struct {
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Warning    bool    `json:"warning"`
}

// EvaluateBudgetStatus 计算当前周期的预算状态
// 预算金额 <= 0 属于上游应拒绝的脏数据，这里兜底返回 percentage=0、warning=false，
// 避免把 NaN/Inf 写进 JSON 响应
func EvaluateBudgetStatus(budget models.Budget, expenses []models.Expense, now time.Time) BudgetStatus {
	periodStart := PeriodStart(budget.Period, now)
	spent := SumInPeriod(expenses, budget.UserID, periodStart)

	status := BudgetStatus{
		Spent:     spent,
		Remaining: budget.Amount - spent,
	}
	if budget.Amount > 0 {
		status.Percentage = spent / budget.Amount * 100
		status.Warning = status.Percentage >= WarningThreshold
	}
	return status
}
