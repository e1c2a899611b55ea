package models

import (
	"github.com/go-ozzo/ozzo-validation/v4"
	"strings"
)

// Author is the public profile of a user; both share the same id.
type Author struct {
	Model
	Name        string `gorm:"size:255;not null" json:"name"`
	Title       string `gorm:"size:255" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Avatar      string `json:"avatar"`
}

func (a *Author) Prepare() {
	a.Name = strings.TrimSpace(a.Name)
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.Avatar = strings.TrimSpace(a.Avatar)
}

func (a *Author) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&a.Title, validation.RuneLength(0, 100)),
	)
}
