package models

type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Tag) TableName() string {
	return "tags"
}

// RecipeTag is the explicit join row for the recipes<->tags many-to-many.
// The composite primary key rules out duplicate pairs at the store.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey" json:"recipe_id"`
	TagID    uint `gorm:"primaryKey" json:"tag_id"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
