package model

import (
	"errors"
	"time"
)

const (
	minAllowedAge = 1
	maxAllowedAge = 120
)

// Utterance records one uploaded recording: where the audio object lives
// plus the contextual metadata supplied by the collector.
type Utterance struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AudioKey  string    `gorm:"type:varchar(255);not null" json:"audioKey"`
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	PromptID  int64     `gorm:"not null;index" json:"promptId"`
	Device    string    `gorm:"type:varchar(64)" json:"device"`
	Age       int       `gorm:"not null" json:"age"`
	Gender    string    `gorm:"type:varchar(32)" json:"gender"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Utterance) TableName() string {
	return "utterances"
}

// Validate rejects utterances that cannot be stored.
func (u *Utterance) Validate() error {
	if u.AudioKey == "" {
		return errors.New("audio cannot be empty")
	}
	if u.UserID == "" {
		return errors.New("userId cannot be empty")
	}
	if u.Age < minAllowedAge || u.Age > maxAllowedAge {
		return errors.New("age must be between 1 and 120")
	}
	return nil
}
