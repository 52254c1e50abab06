package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"` // never serialized

	// Associations
	Recipes   []Recipe   `gorm:"foreignKey:AuthorID" json:"recipes,omitempty"`
	Favorites []Favorite `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
}

func (User) TableName() string {
	return "users"
}
