package models

import (
	"time"

	"gorm.io/gorm"
)

// Budget 周期枚举
const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"
)

// Budget 预算模型，每个用户至多一条（upsert 语义）
type Budget struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Period    string         `json:"period" gorm:"size:10;not null"` // weekly/monthly
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// IsValidPeriod 校验周期取值
func IsValidPeriod(period string) bool {
	return period == BudgetPeriodWeekly || period == BudgetPeriodMonthly
}
