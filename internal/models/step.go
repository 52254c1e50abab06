package models

// A step is persisted only when at least one of Body/ImagePath is non-empty;
// image-only steps are valid.
type Step struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID  uint    `gorm:"not null;index" json:"recipe_id"`
	Body      string  `gorm:"type:text;not null" json:"body"`
	OrderNo   int     `gorm:"not null;default:0" json:"order_no"`
	ImagePath *string `json:"image_path,omitempty"`
}

func (Step) TableName() string {
	return "steps"
}
