package models

type Favorite struct {
	UserID   uint `gorm:"primaryKey" json:"user_id"`
	RecipeID uint `gorm:"primaryKey" json:"recipe_id"`

	// Associations
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
