package models

type Category string

const (
	CategoryJudgmentAnalysis Category = "judgment-analysis"
	CategoryLegalOutreach    Category = "legal-outreach"
)

// CategoryInfo holds the display texts of a category page.
type CategoryInfo struct {
	Slug        Category `json:"slug"`
	Name        string   `json:"name"`
	Heading     string   `json:"heading"`
	Description string   `json:"description"`
}

var categories = []CategoryInfo{
	{
		Slug:        CategoryJudgmentAnalysis,
		Name:        "裁判分析",
		Heading:     "裁判分析專欄",
		Description: "深入分析重要判決案例，解讀法律適用與實務見解",
	},
	{
		Slug:        CategoryLegalOutreach,
		Name:        "法律普及",
		Heading:     "法律普及專欄",
		Description: "讓法律知識更容易理解，提升全民法律素養",
	},
}

// Categories returns all categories in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	_, ok := c.Info()
	return ok
}

func (c Category) Info() (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Slug == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Name returns the display name, or the slug itself for an unknown category.
func (c Category) Name() string {
	if info, ok := c.Info(); ok {
		return info.Name
	}
	return string(c)
}

// CategoryValues is used by validation rules.
func CategoryValues() []any {
	values := make([]any, 0, len(categories))
	for _, info := range categories {
		values = append(values, info.Slug)
	}
	return values
}
