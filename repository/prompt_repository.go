package repository

import (
	"errors"
	"fmt"

	"voxcollect/model"

	"gorm.io/gorm"
)

// PromptRepository defines the interface for prompt data operations.
type PromptRepository interface {
	SavePrompt(prompt *model.Prompt) error
	// NextUnread returns the oldest unread prompt and marks it read, or
	// (nil, nil) when every prompt has been served.
	NextUnread() (*model.Prompt, error)
	ResetAllUnread() (int64, error)
	CountUnread() (int64, error)
}

type gormPromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a prompt repository backed by the given DB.
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &gormPromptRepository{db: db}
}

func (r *gormPromptRepository) SavePrompt(prompt *model.Prompt) error {
	if prompt.Type != model.PromptTypeText && prompt.Type != model.PromptTypeImage {
		return fmt.Errorf("unknown prompt type %q", prompt.Type)
	}
	if prompt.Body == "" {
		return errors.New("prompt body cannot be empty")
	}
	prompt.Read = 0
	if err := r.db.Create(prompt).Error; err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}
	return nil
}

func (r *gormPromptRepository) NextUnread() (*model.Prompt, error) {
	// Optimistic claim: a candidate is handed out only when this call is
	// the one that flips its read flag. A concurrent collector that read
	// the same candidate loses the conditional update and moves on to the
	// next row.
	for {
		var prompt model.Prompt
		err := r.db.Where("`read` = ?", 0).Order("id asc").First(&prompt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch next prompt: %w", err)
		}

		res := r.db.Model(&model.Prompt{}).
			Where("id = ? AND `read` = ?", prompt.ID, 0).
			Update("read", 1)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to claim prompt: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			prompt.Read = 1
			return &prompt, nil
		}
	}
}

func (r *gormPromptRepository) ResetAllUnread() (int64, error) {
	res := r.db.Model(&model.Prompt{}).Where("`read` = ?", 1).Update("read", 0)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reset prompts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormPromptRepository) CountUnread() (int64, error) {
	var n int64
	if err := r.db.Model(&model.Prompt{}).Where("`read` = ?", 0).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread prompts: %w", err)
	}
	return n, nil
}
