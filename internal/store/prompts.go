package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/petermazzocco/prompt-image-app/models"
	"gorm.io/gorm"
)

// Prompts is the prompt store.
type Prompts struct {
	db *gorm.DB
}

func NewPrompts(db *gorm.DB) *Prompts {
	return &Prompts{db: db}
}

// Create persists a prompt owned by user. Callers only invoke it once the
// image has been fetched.
func (p *Prompts) Create(ctx context.Context, user *models.User, promptText string, image []byte) (*models.Prompt, error) {
	prompt := &models.Prompt{
		UUID:       uuid.New().String(),
		UserID:     user.ID,
		PromptText: promptText,
		ImageData:  image,
	}
	if err := p.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}
	return prompt, nil
}

// ListForUser returns the user's prompts, most recent first. Image bytes
// are left out.
func (p *Prompts) ListForUser(ctx context.Context, userID uint) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := p.db.WithContext(ctx).
		Select("id", "uuid", "created_at", "user_id", "prompt_text").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&prompts).Error
	if err != nil {
		return nil, fmt.Errorf("listing prompts for user %d: %w", userID, err)
	}
	return prompts, nil
}

// Get fetches a prompt by id regardless of its owner.
func (p *Prompts) Get(ctx context.Context, id uint) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := p.db.WithContext(ctx).First(&prompt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching prompt %d: %w", id, err)
	}
	return &prompt, nil
}
