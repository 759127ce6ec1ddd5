package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null"`
	Email        string         `json:"email" gorm:"unique;not null"`
	PhoneNumber  string         `json:"phone_number"`
	Role         string         `json:"role" gorm:"default:'reader'"` // super_admin, admin, pharmacy, reader, vendor
	PasswordHash string         `json:"-" gorm:"not null"`
	PharmacyID   string         `json:"pharmacy_id" gorm:"size:36"` // set for pharmacy staff
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UserRole string

const (
	SuperAdmin UserRole = "super_admin"
	Admin      UserRole = "admin"
	Pharmacy   UserRole = "pharmacy"
	Reader     UserRole = "reader"
	Vendor     UserRole = "vendor"
)
