package models

// Recipe is the aggregate root: ingredients, steps and tag links are created
// with it and removed with it. AuthorID stays nullable so recipes survive
// their author's deletion.
type Recipe struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	MainImage   *string `json:"main_image,omitempty"`
	AuthorID    *uint   `gorm:"index" json:"author_id,omitempty"`
	ViewCount   int64   `gorm:"not null;default:0" json:"view_count"`

	// Associations
	Author      *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Ingredients []Ingredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	Steps       []Step       `gorm:"foreignKey:RecipeID" json:"steps,omitempty"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;" json:"tags,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}
