package models

import (
	"time"
)

// SystemLog represents a record in system_logs table, used as the operator
// audit trail for settlement failures and webhook reconciliation fixes.
type SystemLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BatchID    uint      `gorm:"column:batch_id;default:0" json:"batch_id"`
	Level      string    `gorm:"column:level;size:10;not null" json:"level"` // DEBUG, INFO, WARN, ERROR, FATAL
	Message    string    `gorm:"column:message;type:text;not null" json:"message"`
	Module     string    `gorm:"column:module;size:100" json:"module"`
	ErrorStack string    `gorm:"column:error_stack;type:text" json:"error_stack"`
	Meta       JSONMap   `gorm:"column:meta;type:jsonb" json:"meta"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}
