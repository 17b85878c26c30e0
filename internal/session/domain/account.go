package domain

import (
	"time"

	"gorm.io/gorm"
)

// Account is a registered shopper with stored credentials
type Account struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	FullName     string         `json:"full_name" gorm:"not null"`
	Role         string         `json:"role" gorm:"not null;default:'user'"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Account) TableName() string {
	return "accounts"
}

// Identity returns the account's session identity
func (a *Account) Identity() Identity {
	return Identity{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		FullName: a.FullName,
		Role:     a.Role,
	}
}

// AccountRepository defines the contract for credential lookup
type AccountRepository interface {
	Create(account *Account) error
	FindByID(id uint) (*Account, error)
	FindByUsername(username string) (*Account, error)
	FindByEmail(email string) (*Account, error)
}
