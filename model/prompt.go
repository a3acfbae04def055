package model

import "time"

// PromptType distinguishes what the collector is shown.
type PromptType string

const (
	PromptTypeText  PromptType = "TEXT"
	PromptTypeImage PromptType = "IMAGE"
)

// Prompt is a single collection prompt. Body is plain text for TEXT prompts
// and an image URI for IMAGE prompts. Read is 0 until the prompt has been
// served to a collector.
type Prompt struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      PromptType `gorm:"type:varchar(16);not null" json:"type"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	Read      int        `gorm:"not null;default:0;index" json:"-"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// TableName keeps the table name singular-free and explicit.
func (Prompt) TableName() string {
	return "prompts"
}
