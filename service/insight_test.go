package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"cashcompass/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var insightNow = time.Date(2024, 6, 20, 12, 0, 0, 0, time.Local)

func TestGenerateInsights_ScenarioB_NoData(t *testing.T) {
	got := GenerateInsights(1, nil, nil, insightNow)

	assert.Equal(t, "N/A", got.TopCategory)
	assert.Empty(t, got.Anomalies)
	assert.Empty(t, got.CategoryBreakdown)
	assert.Len(t, got.Recommendations, 3)
	assert.Contains(t, got.Summary, "No expenses tracked yet")
	assert.Equal(t, "Start tracking to see potential savings", got.Savings)

	// 其他用户的记录不应影响结果
	others := []models.Expense{expense(2, 100, models.CategoryRent, insightNow)}
	assert.Equal(t, got, GenerateInsights(1, others, nil, insightNow))
}

func TestGenerateInsights_NoDataSerializesEmptyCollections(t *testing.T) {
	// 空结果里 anomalies/categoryBreakdown 必须是 []/{}，不能是 null
	b, err := json.Marshal(GenerateInsights(1, nil, nil, insightNow))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"anomalies":[]`)
	assert.Contains(t, string(b), `"categoryBreakdown":{}`)
}

func TestGenerateInsights_ScenarioC_Anomalies(t *testing.T) {
	// Groceries 均值 = (10+10+100)/3 = 40，只有 100 超过 2 倍均值
	expenses := []models.Expense{
		expense(1, 10, models.CategoryGroceries, insightNow.AddDate(0, 0, -3)),
		expense(1, 10, models.CategoryGroceries, insightNow.AddDate(0, 0, -2)),
		expense(1, 100, models.CategoryGroceries, insightNow.AddDate(0, 0, -1)),
	}
	expenses[2].Description = "party supplies"

	got := GenerateInsights(1, expenses, nil, insightNow)

	require.Len(t, got.Anomalies, 1)
	assert.Contains(t, got.Anomalies[0], "$100.00")
	assert.Contains(t, got.Anomalies[0], "party supplies")
	assert.Contains(t, got.Anomalies[0], models.CategoryGroceries)
	assert.Contains(t, got.Anomalies[0], "$40.00")
}

func TestGenerateInsights_AnomalyWindowOnlyLastTen(t *testing.T) {
	// 窗口外（更早录入）的离群值不应再被报告
	var expenses []models.Expense
	outlier := expense(1, 500, models.CategoryOther, insightNow.AddDate(0, 0, -20))
	outlier.Description = "old outlier"
	expenses = append(expenses, outlier)
	for i := 0; i < 10; i++ {
		expenses = append(expenses, expense(1, 10, models.CategoryOther, insightNow.AddDate(0, 0, -i)))
	}

	got := GenerateInsights(1, expenses, nil, insightNow)
	for _, a := range got.Anomalies {
		assert.NotContains(t, a, "old outlier")
	}
}

func TestGenerateInsights_ScenarioD_Savings(t *testing.T) {
	// 娱乐 600 + 购物 200 => 10% 节省潜力 = $80.00
	expenses := []models.Expense{
		expense(1, 600, models.CategoryEntertainment, insightNow.AddDate(0, 0, -5)),
		expense(1, 200, models.CategoryShopping, insightNow.AddDate(0, 0, -4)),
	}

	got := GenerateInsights(1, expenses, nil, insightNow)
	assert.Equal(t, "$80.00 per month", got.Savings)

	// 无弹性类别消费时返回哨兵值
	rent := []models.Expense{expense(1, 900, models.CategoryRent, insightNow.AddDate(0, 0, -5))}
	assert.Equal(t, "N/A", GenerateInsights(1, rent, nil, insightNow).Savings)
}

func TestGenerateInsights_BudgetTiers(t *testing.T) {
	budget := &models.Budget{UserID: 1, Amount: 1000, Period: models.BudgetPeriodMonthly}

	tests := []struct {
		name      string
		monthSpend float64
		marker    string
	}{
		{"超过80%告警", 850, "⚠️"},
		{"超过50%提醒", 600, "💡"},
		{"50%以内表扬", 200, "✅"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expenses := []models.Expense{
				expense(1, tt.monthSpend, models.CategoryGroceries, insightNow.AddDate(0, 0, -1)),
			}
			got := GenerateInsights(1, expenses, budget, insightNow)

			require.NotEmpty(t, got.Recommendations)
			// 预算规则永远排在第一条，且三档只命中一档
			assert.Contains(t, got.Recommendations[0], tt.marker)
			count := 0
			for _, r := range got.Recommendations {
				if strings.Contains(r, "budget") {
					count++
				}
			}
			assert.Equal(t, 1, count)
		})
	}
}

func TestGenerateInsights_RecommendationCap(t *testing.T) {
	// 让所有规则同时命中：预算、>500 的头部类别、娱乐类、日均消费
	budget := &models.Budget{UserID: 1, Amount: 1000, Period: models.BudgetPeriodMonthly}
	expenses := []models.Expense{
		expense(1, 700, models.CategoryEntertainment, insightNow.AddDate(0, 0, -2)),
		expense(1, 200, models.CategoryShopping, insightNow.AddDate(0, 0, -1)),
	}

	got := GenerateInsights(1, expenses, budget, insightNow)
	assert.LessOrEqual(t, len(got.Recommendations), 5)
	// 日均消费规则必定存在
	found := false
	for _, r := range got.Recommendations {
		if strings.Contains(r, "average daily spending") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateInsights_DailyAverageProjection(t *testing.T) {
	// 近 7 天消费 70 => 日均 $10.00，月度预估 $300.00
	expenses := []models.Expense{
		expense(1, 70, models.CategoryGroceries, insightNow.AddDate(0, 0, -1)),
	}

	got := GenerateInsights(1, expenses, nil, insightNow)
	joined := strings.Join(got.Recommendations, "\n")
	assert.Contains(t, joined, "$10.00")
	assert.Contains(t, joined, "$300.00")
}

func TestGenerateInsights_TopCategoryTieBreak(t *testing.T) {
	// 金额相同的类别，先出现者胜出
	expenses := []models.Expense{
		expense(1, 100, models.CategoryUtilities, insightNow.AddDate(0, 0, -3)),
		expense(1, 100, models.CategoryGroceries, insightNow.AddDate(0, 0, -2)),
	}
	assert.Equal(t, models.CategoryUtilities, GenerateInsights(1, expenses, nil, insightNow).TopCategory)

	// 金额更高者不受顺序影响
	expenses[1].Amount = 150
	assert.Equal(t, models.CategoryGroceries, GenerateInsights(1, expenses, nil, insightNow).TopCategory)
}

func TestGenerateInsights_Idempotent(t *testing.T) {
	budget := &models.Budget{UserID: 1, Amount: 500, Period: models.BudgetPeriodWeekly}
	var expenses []models.Expense
	for i := 0; i < 15; i++ {
		cat := models.GetCategories()[i%len(models.GetCategories())]
		e := expense(1, float64(10+i*7), cat, insightNow.AddDate(0, 0, -i))
		e.Description = fmt.Sprintf("purchase %d", i)
		expenses = append(expenses, e)
	}

	first, err := json.Marshal(GenerateInsights(1, expenses, budget, insightNow))
	require.NoError(t, err)
	second, err := json.Marshal(GenerateInsights(1, expenses, budget, insightNow))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerateInsights_Summary(t *testing.T) {
	expenses := []models.Expense{
		expense(1, 120, models.CategoryRent, insightNow.AddDate(0, 0, -3)),
		expense(1, 30, models.CategoryGroceries, insightNow.AddDate(0, 0, -2)),
	}

	got := GenerateInsights(1, expenses, nil, insightNow)
	assert.Contains(t, got.Summary, "2 expenses")
	assert.Contains(t, got.Summary, "$150.00")
	assert.Contains(t, got.Summary, models.CategoryRent)
	assert.Equal(t, models.CategoryRent, got.TopCategory)
}
