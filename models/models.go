package models

import (
	"time"
)

type User struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string   `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string   `json:"-" gorm:"size:128;not null"`
	Prompts      []Prompt `json:"prompts,omitempty"`
}

type Prompt struct {
	ID         uint      `gorm:"primarykey"`
	UUID       string    `gorm:"size:36;uniqueIndex"`
	CreatedAt  time.Time `gorm:"index"`
	UserID     uint      `gorm:"not null;index"`
	User       *User     `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PromptText string    `gorm:"type:text;not null"`
	ImageData  []byte    `json:"-"`
}

// Title is the first line of the prompt, used in the history list.
func (p Prompt) Title() string {
	for i, r := range p.PromptText {
		if r == '\n' || r == '\r' {
			return p.PromptText[:i]
		}
	}
	return p.PromptText
}
