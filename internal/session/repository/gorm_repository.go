package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/storefront/internal/session/domain"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GORM account repository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create inserts a new account
func (r *GormAccountRepository) Create(account *domain.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindByID retrieves an account by ID
func (r *GormAccountRepository) FindByID(id uint) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}

// FindByUsername retrieves an account by username
func (r *GormAccountRepository) FindByUsername(username string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.Where("username = ?", username).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}

// FindByEmail retrieves an account by email
func (r *GormAccountRepository) FindByEmail(email string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}

// AutoMigrate runs database migrations
func (r *GormAccountRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Account{})
}
