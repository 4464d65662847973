package api

import (
	"time"

	"cashcompass/database"
	"cashcompass/middleware"
	"cashcompass/models"
	"cashcompass/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// UpsertBudgetRequest 设置预算请求
type UpsertBudgetRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"1000"`
	Period string  `json:"period" binding:"required" example:"monthly"` // weekly 或 monthly
}

// Get 获取预算及当前周期状态
// @Summary 获取预算
// @Description 获取当前用户的预算及当前周期的使用状态；未设置预算时 budget 为 null
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budget models.Budget
	if err := database.DB.Where("user_id = ?", userID).First(&budget).Error; err != nil {
		// 未设置预算不算错误
		Success(c, gin.H{"budget": nil, "status": nil})
		return
	}

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询消费记录失败"))
		return
	}

	status := service.EvaluateBudgetStatus(budget, expenses, time.Now())
	Success(c, gin.H{
		"budget": budget,
		"status": status,
	})
}

// Upsert 设置预算
// @Summary 设置预算
// @Description 创建或更新当前用户的预算，每个用户只有一份预算；更新保留原创建时间
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpsertBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget [post]
func (h *BudgetHandler) Upsert(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if !models.IsValidPeriod(req.Period) {
		BadRequest(c, "无效的预算周期，可选值: weekly、monthly")
		return
	}

	var budget models.Budget
	err := database.DB.Where("user_id = ?", userID).First(&budget).Error
	if err == nil {
		// 已有预算则原地更新，保留创建时间
		budget.Amount = req.Amount
		budget.Period = req.Period
		if err := database.DB.Model(&budget).Updates(map[string]interface{}{
			"amount": req.Amount,
			"period": req.Period,
		}).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新预算失败"))
			return
		}
		SuccessWithMessage(c, "更新成功", budget)
		return
	}

	budget = models.Budget{
		UserID: userID,
		Amount: req.Amount,
		Period: req.Period,
	}
	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}
