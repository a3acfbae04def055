package repository

import (
	"fmt"

	"voxcollect/model"

	"gorm.io/gorm"
)

// UtteranceRepository defines the interface for utterance data operations.
type UtteranceRepository interface {
	SaveUtterance(utterance *model.Utterance) (int64, error)
	CountByUser(userID string) (int64, error)
}

type gormUtteranceRepository struct {
	db *gorm.DB
}

// NewUtteranceRepository creates an utterance repository backed by the given DB.
func NewUtteranceRepository(db *gorm.DB) UtteranceRepository {
	return &gormUtteranceRepository{db: db}
}

func (r *gormUtteranceRepository) SaveUtterance(utterance *model.Utterance) (int64, error) {
	if err := utterance.Validate(); err != nil {
		return 0, err
	}
	if err := r.db.Create(utterance).Error; err != nil {
		return 0, fmt.Errorf("failed to save utterance: %w", err)
	}
	return utterance.ID, nil
}

func (r *gormUtteranceRepository) CountByUser(userID string) (int64, error) {
	var n int64
	if err := r.db.Model(&model.Utterance{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count utterances: %w", err)
	}
	return n, nil
}
