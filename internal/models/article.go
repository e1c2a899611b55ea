package models

import (
	"github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/datatypes"
	"math"
	"strings"
	"unicode"
)

const (
	DefaultReadTime = 5

	// runes per minute used when a read time has to be estimated
	readingSpeed = 400
)

type QAItem struct {
	Question string `json:"question" mapstructure:"question"`
	Answer   string `json:"answer" mapstructure:"answer"`
}

func (q QAItem) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Question, validation.Required),
		validation.Field(&q.Answer, validation.Required),
	)
}

type Article struct {
	Model
	Title    string                      `gorm:"size:255;not null" json:"title"`
	Excerpt  string                      `gorm:"type:text" json:"excerpt"`
	Content  string                      `gorm:"type:text" json:"content"`
	AuthorID string                      `gorm:"size:36;index;not null" json:"authorId"`
	Category Category                    `gorm:"size:64;index;not null" json:"category"`
	Keywords datatypes.JSONSlice[string] `json:"keywords"`
	QA       datatypes.JSONSlice[QAItem] `gorm:"column:qa" json:"qa"`
	Image    string                      `json:"image"`
	ReadTime int                         `gorm:"not null" json:"readTime"`
	Featured bool                        `gorm:"index;not null" json:"featured"`
	Views    int64                       `gorm:"not null" json:"views"`
}

func (a *Article) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&a.Content, validation.Required),
		validation.Field(&a.AuthorID, validation.Required),
		validation.Field(&a.Category, validation.Required, validation.In(CategoryValues()...)),
		validation.Field(&a.ReadTime, validation.Required, validation.Min(1)),
		validation.Field(&a.Views, validation.Min(int64(0))),
		validation.Field(&a.QA),
	)
}

// Prepare trims the free text fields, normalizes the keywords and fills in a read time.
func (a *Article) Prepare() {
	a.Title = strings.TrimSpace(a.Title)
	a.Excerpt = strings.TrimSpace(a.Excerpt)
	a.Image = strings.TrimSpace(a.Image)
	a.Keywords = NormalizeKeywords(a.Keywords)
	if a.QA == nil {
		a.QA = datatypes.JSONSlice[QAItem]{}
	}
	if a.ReadTime <= 0 {
		a.ReadTime = EstimateReadTime(a.Content)
	}
}

// NormalizeKeywords trims every keyword, drops empty ones and removes duplicates
// while keeping the first occurrence in place.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if len(k) == 0 {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// EstimateReadTime returns the minutes needed to read content; never less than one.
func EstimateReadTime(content string) int {
	count := 0
	for _, r := range content {
		if !unicode.IsSpace(r) {
			count++
		}
	}

	minutes := int(math.Ceil(float64(count) / readingSpeed))
	if minutes < 1 {
		return 1
	}
	return minutes
}
