package model

import "time"

// UserModel mirrors the 'users' table.
// NormalizedUsername carries the unique index that makes duplicate registration fail atomically.
type UserModel struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement"`
	Username           string     `gorm:"type:varchar(50);not null"`
	NormalizedUsername string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_users_normalized_username"`
	Email              string     `gorm:"type:varchar(255);not null"`
	FirstName          string     `gorm:"type:varchar(100)"`
	LastName           string     `gorm:"type:varchar(100)"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          *time.Time `gorm:"autoUpdateTime:false"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// All returns every model managed by migrations.
func All() []any {
	return []any{&UserModel{}}
}
