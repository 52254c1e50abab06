package models

// OrderNo is the submission index; display order, not unique.
type Ingredient struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID uint    `gorm:"not null;index" json:"recipe_id"`
	Name     string  `gorm:"not null" json:"name"`
	Amount   *string `json:"amount,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	OrderNo  int     `gorm:"not null;default:0" json:"order_no"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
