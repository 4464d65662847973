package service

import (
	"time"

	"cashcompass/models"
)

// PeriodStart 计算预算周期相对 now 的起点（本地时区零点）
// weekly: 最近一个周日；monthly: 当月 1 号
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case models.BudgetPeriodWeekly:
		sunday := now.AddDate(0, 0, -int(now.Weekday()))
		return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, now.Location())
	default:
		// monthly 及未知取值按月处理
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// SumInPeriod 汇总指定用户自 periodStart 起的消费金额，空集合返回 0
func SumInPeriod(expenses []models.Expense, userID uint, periodStart time.Time) float64 {
	var sum float64
	for _, e := range expenses {
		if e.UserID != userID {
			continue
		}
		if e.ExpenseTime.Before(periodStart) {
			continue
		}
		sum += e.Amount
	}
	return sum
}

// SumByCategory 按类别汇总金额，只包含出现过的类别
func SumByCategory(expenses []models.Expense) map[string]float64 {
	breakdown, _ := sumByCategoryOrdered(expenses)
	return breakdown
}

// sumByCategoryOrdered 按类别汇总金额，并返回类别的首次出现顺序，
// 供 topCategory 在金额相同时按先插入者优先做稳定决断
func sumByCategoryOrdered(expenses []models.Expense) (map[string]float64, []string) {
	breakdown := make(map[string]float64)
	var order []string
	for _, e := range expenses {
		if _, seen := breakdown[e.Category]; !seen {
			order = append(order, e.Category)
		}
		breakdown[e.Category] += e.Amount
	}
	return breakdown, order
}
