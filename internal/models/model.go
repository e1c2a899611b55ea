package models

import (
	"github.com/samborkent/uuidv7"
	"gorm.io/gorm"
	"time"
)

// Model replaces gorm.Model; ids are opaque strings so that authors can share the id of their user.
type Model struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a time-ordered uuid when the record has no id yet.
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if len(m.ID) == 0 {
		m.ID = uuidv7.New().String()
	}
	return nil
}
