package service

import (
	"fmt"
	"sort"
	"time"

	"cashcompass/models"
)

// 洞察生成参数
const (
	maxRecommendations = 5    // 推荐条数上限
	anomalyWindow      = 10   // 异常检测只看最近录入的 N 条
	anomalyFactor      = 2.0  // 超过类别均值 N 倍视为异常
	highCategoryLimit  = 500  // 单类别累计超过该金额时提示压缩
	savingsRate        = 0.10 // 弹性类别的节省潜力比例
)

// Insights 规则化消费洞察结果，字段形状与前端约定一致
type Insights struct {
	Summary           string             `json:"summary"`
	Recommendations   []string           `json:"recommendations"`
	Anomalies         []string           `json:"anomalies"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	TopCategory       string             `json:"topCategory"`
	Savings           string             `json:"savings"`
}

// GenerateInsights 基于用户全部消费记录与可选预算生成消费洞察
// 纯函数：相同输入（含 now）产出逐字节一致的结果；expenses 按录入顺序传入，
// 异常检测的"最近"指最近录入的记录
func GenerateInsights(userID uint, expenses []models.Expense, budget *models.Budget, now time.Time) Insights {
	userExpenses := filterByUser(expenses, userID)

	if len(userExpenses) == 0 {
		return Insights{
			Summary: "No expenses tracked yet. Start adding expenses to get personalized insights!",
			Recommendations: []string{
				"Begin tracking your expenses to understand your spending patterns",
				"Set a budget to stay on top of your finances",
				"Categorize expenses for better insights",
			},
			Anomalies:         []string{},
			CategoryBreakdown: map[string]float64{},
			TopCategory:       "N/A",
			Savings:           "Start tracking to see potential savings",
		}
	}

	breakdown, categoryOrder := sumByCategoryOrdered(userExpenses)
	topCategory := topCategoryOf(breakdown, categoryOrder)

	var totalSpent float64
	for _, e := range userExpenses {
		totalSpent += e.Amount
	}
	thisMonthTotal := sumThisMonth(userExpenses, now)

	// 推荐规则按固定顺序追加，最后截断到上限
	var recommendations []string

	if budget != nil && budget.Amount > 0 {
		percentUsed := thisMonthTotal / budget.Amount * 100
		switch {
		case percentUsed > 80:
			recommendations = append(recommendations, fmt.Sprintf(
				"⚠️ You've spent %.0f%% of your %s budget ($%.2f). Consider reducing expenses in %s to stay within limits.",
				percentUsed, budget.Period, thisMonthTotal, topCategory))
		case percentUsed > 50:
			recommendations = append(recommendations, fmt.Sprintf(
				"💡 You're at %.0f%% of your %s budget. Keep an eye on %s spending.",
				percentUsed, budget.Period, topCategory))
		default:
			recommendations = append(recommendations, fmt.Sprintf(
				"✅ Great job! You're only at %.0f%% of your %s budget.",
				percentUsed, budget.Period))
		}
	}

	if breakdown[topCategory] > highCategoryLimit {
		recommendations = append(recommendations, fmt.Sprintf(
			"Your highest spending is on %s ($%.2f). Consider if you can reduce this category by 10-20%%.",
			topCategory, breakdown[topCategory]))
	}

	if entertainment := breakdown[models.CategoryEntertainment]; entertainment > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"You spent $%.2f on Entertainment. This is a discretionary category - consider setting a stricter limit.",
			entertainment))
	}

	last7Total, last7Count := sumLastDays(userExpenses, now, 7)
	var dailyAvg float64
	if last7Count > 0 {
		dailyAvg = last7Total / 7
	}
	recommendations = append(recommendations, fmt.Sprintf(
		"Your average daily spending is $%.2f. At this rate, you'll spend $%.2f per month.",
		dailyAvg, dailyAvg*30))

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	anomalies := detectAnomalies(userExpenses, breakdown)
	savings := potentialSavings(breakdown)

	summary := fmt.Sprintf(
		"You've tracked %d expenses totaling $%.2f. Your most expensive category is %s. Based on your spending patterns, we've identified some opportunities to optimize your budget.",
		len(userExpenses), totalSpent, topCategory)

	return Insights{
		Summary:           summary,
		Recommendations:   recommendations,
		Anomalies:         anomalies,
		CategoryBreakdown: breakdown,
		TopCategory:       topCategory,
		Savings:           savings,
	}
}

// filterByUser 过滤出指定用户的记录，保持原有顺序
func filterByUser(expenses []models.Expense, userID uint) []models.Expense {
	var out []models.Expense
	for _, e := range expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// topCategoryOf 取累计金额最高的类别，金额相同按首次出现顺序优先
func topCategoryOf(breakdown map[string]float64, order []string) string {
	if len(order) == 0 {
		return "N/A"
	}
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return breakdown[ranked[i]] > breakdown[ranked[j]]
	})
	return ranked[0]
}

// sumThisMonth 汇总 now 所在自然月的消费
func sumThisMonth(expenses []models.Expense, now time.Time) float64 {
	var sum float64
	for _, e := range expenses {
		if e.ExpenseTime.Year() == now.Year() && e.ExpenseTime.Month() == now.Month() {
			sum += e.Amount
		}
	}
	return sum
}

// sumLastDays 汇总最近 days 天的消费金额与笔数
func sumLastDays(expenses []models.Expense, now time.Time, days int) (float64, int) {
	cutoff := now.AddDate(0, 0, -days)
	var sum float64
	var count int
	for _, e := range expenses {
		if e.ExpenseTime.Before(cutoff) {
			continue
		}
		sum += e.Amount
		count++
	}
	return sum, count
}

// detectAnomalies 在最近录入的 anomalyWindow 条记录里找出金额超过类别均值
// anomalyFactor 倍的交易；类别均值按该用户全部记录计算，笔数恒 >= 1，不会除零
func detectAnomalies(userExpenses []models.Expense, breakdown map[string]float64) []string {
	counts := make(map[string]int)
	for _, e := range userExpenses {
		counts[e.Category]++
	}
	avgByCategory := make(map[string]float64, len(breakdown))
	for cat, total := range breakdown {
		avgByCategory[cat] = total / float64(counts[cat])
	}

	window := userExpenses
	if len(window) > anomalyWindow {
		window = window[len(window)-anomalyWindow:]
	}

	anomalies := []string{}
	for _, e := range window {
		avg := avgByCategory[e.Category]
		if e.Amount > avg*anomalyFactor {
			anomalies = append(anomalies, fmt.Sprintf(
				"🔴 Unusual: $%.2f on %q is significantly higher than your average %s purchase ($%.2f)",
				e.Amount, e.Description, e.Category, avg))
		}
	}
	return anomalies
}

// potentialSavings 估算弹性类别（娱乐、购物）压缩 10% 后的节省潜力
func potentialSavings(breakdown map[string]float64) string {
	var canSave float64
	for _, cat := range models.DiscretionaryCategories() {
		canSave += breakdown[cat] * savingsRate
	}
	if canSave > 0 {
		return fmt.Sprintf("$%.2f per month", canSave)
	}
	return "N/A"
}
