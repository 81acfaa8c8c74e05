package schema

import "time"

// Collection represents the collections table
type Collection struct {
	ID             string `gorm:"column:id;primaryKey;type:text"`
	Name           string `gorm:"column:name;not null;type:text;default:''"`
	Slug           string `gorm:"column:slug;not null;type:text;default:''"`
	CreatorAddress string `gorm:"column:creator_address;not null;type:text;index"`
	VerifiedLevel  int    `gorm:"column:verified_level;not null;default:0"`
	// Visible is false for collections hidden from everyone but admins and the creator
	Visible   bool      `gorm:"column:visible;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Collection model
func (Collection) TableName() string {
	return "collections"
}
