package domain

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog entry
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Price       float64        `json:"price" gorm:"not null"`
	Stock       int            `json:"stock" gorm:"not null;default:0"`
	Category    string         `json:"category"`
	SKU         string         `json:"sku" gorm:"uniqueIndex"`
	ImageURL    string         `json:"image_url"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsAvailable checks if the product can be added to a cart
func (p *Product) IsAvailable() bool {
	return p.Stock > 0 && p.IsActive
}

// ProductRepository defines the contract for catalog data access
type ProductRepository interface {
	Create(product *Product) error
	FindByID(id uint) (*Product, error)
	FindBySKU(sku string) (*Product, error)
	FindAll(limit, offset int) ([]Product, error)
	Search(term string, limit, offset int) ([]Product, error)
	Update(product *Product) error
	Delete(id uint) error
	Count() (int64, error)
	AdjustStock(id uint, delta int) error
}
