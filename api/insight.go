package api

import (
	"time"

	"cashcompass/database"
	"cashcompass/middleware"
	"cashcompass/models"
	"cashcompass/service"

	"github.com/gin-gonic/gin"
)

// InsightHandler 消费洞察处理器
type InsightHandler struct{}

// NewInsightHandler 创建消费洞察处理器
func NewInsightHandler() *InsightHandler {
	return &InsightHandler{}
}

// Get 获取消费洞察
// @Summary 获取消费洞察
// @Description 基于规则引擎对用户全部消费记录生成洞察：总结、建议、异常交易、类别分布和节省潜力
// @Tags 洞察
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Insights} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/insights [get]
func (h *InsightHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	// 异常检测依赖录入顺序，必须按创建时间升序取
	var expenses []models.Expense
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询消费记录失败"))
		return
	}

	var budget *models.Budget
	var b models.Budget
	if err := database.DB.Where("user_id = ?", userID).First(&b).Error; err == nil {
		budget = &b
	}

	Success(c, service.GenerateInsights(userID, expenses, budget, time.Now()))
}
