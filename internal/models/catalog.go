package models

import (
	"time"

	"gorm.io/gorm"
)

// CatalogProduct is a sellable medicine looked up when pricing order items
// and building processed medicine lists.
type CatalogProduct struct {
	ID                   string         `json:"id" gorm:"primaryKey;size:36"`
	Name                 string         `json:"name" gorm:"not null;index"`
	GenericName          string         `json:"generic_name"`
	Manufacturer         string         `json:"manufacturer"`
	ActiveIngredient     string         `json:"active_ingredient"`
	Category             string         `json:"category"`
	Dosage               string         `json:"dosage"`
	Price                float64        `json:"price" gorm:"not null"`
	UnitType             UnitType       `json:"unit_type" gorm:"type:varchar(10);default:'box'"`
	RequiresPrescription bool           `json:"requires_prescription" gorm:"default:false"`
	IsActive             bool           `json:"is_active" gorm:"default:true"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
