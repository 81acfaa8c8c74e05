package schema

import "time"

// User represents the users table
type User struct {
	Address       string `gorm:"column:address;primaryKey;type:text"`
	Username      string `gorm:"column:username;not null;type:text;default:''"`
	DisplayName   string `gorm:"column:display_name;not null;type:text;default:''"`
	Bio           string `gorm:"column:bio;not null;type:text;default:''"`
	VerifiedLevel int    `gorm:"column:verified_level;not null;default:0"`
	// AvatarURL is the generated avatar asset, or the legacy avatar url when none was generated yet
	AvatarURL *string   `gorm:"column:avatar_url;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
