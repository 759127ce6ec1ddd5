package models

import (
	"time"

	"gorm.io/gorm"
)

type PrescriptionStatus string

const (
	PrescriptionSubmitted      PrescriptionStatus = "submitted"
	PrescriptionReviewing      PrescriptionStatus = "reviewing"
	PrescriptionApproved       PrescriptionStatus = "approved"
	PrescriptionRejected       PrescriptionStatus = "rejected"
	PrescriptionSuspended      PrescriptionStatus = "suspended"
	PrescriptionPreparing      PrescriptionStatus = "preparing"
	PrescriptionReady          PrescriptionStatus = "ready"
	PrescriptionOutForDelivery PrescriptionStatus = "out-for-delivery"
	PrescriptionDelivered      PrescriptionStatus = "delivered"
	PrescriptionCancelled      PrescriptionStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s PrescriptionStatus) IsTerminal() bool {
	return s == PrescriptionDelivered || s == PrescriptionCancelled || s == PrescriptionRejected
}

type Urgency string

const (
	UrgencyUrgent  Urgency = "urgent"
	UrgencyNormal  Urgency = "normal"
	UrgencyRoutine Urgency = "routine"
)

// Rank orders urgencies for sorting: urgent > normal > routine.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyUrgent:
		return 3
	case UrgencyNormal:
		return 2
	case UrgencyRoutine:
		return 1
	}
	return 0
}

type FileType string

const (
	FileImage FileType = "image"
	FilePDF   FileType = "pdf"
)

type Prescription struct {
	ID               string             `json:"id" gorm:"primaryKey;size:36"`
	PatientName      string             `json:"patient_name" gorm:"not null"`
	CustomerID       string             `json:"customer_id" gorm:"index;size:36"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `json:"customer_phone"`
	DoctorName       string             `json:"doctor_name"`
	HospitalClinic   string             `json:"hospital_clinic"`
	CurrentStatus    PrescriptionStatus `json:"current_status" gorm:"type:varchar(20);index;not null"`
	Urgency          Urgency            `json:"urgency" gorm:"type:varchar(10);default:'normal'"`
	AssignedReaderID string             `json:"assigned_reader_id" gorm:"size:36"`
	RejectionReason  string             `json:"rejection_reason"`
	TotalAmount      float64            `json:"total_amount"`

	Files     []PrescriptionFile  `json:"files" gorm:"foreignKey:PrescriptionID"`
	Medicines []ProcessedMedicine `json:"processed_medicines" gorm:"foreignKey:PrescriptionID"`
	History   []StatusEntry       `json:"status_history" gorm:"foreignKey:PrescriptionID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type PrescriptionFile struct {
	ID             string   `json:"id" gorm:"primaryKey;size:36"`
	PrescriptionID string   `json:"prescription_id" gorm:"index;size:36"`
	Name           string   `json:"name" gorm:"not null"`
	Type           FileType `json:"type" gorm:"type:varchar(10);not null"` // image, pdf
}

type ProcessedMedicine struct {
	ID             string  `json:"id" gorm:"primaryKey;size:36"`
	PrescriptionID string  `json:"prescription_id" gorm:"index;size:36"`
	ProductID      string  `json:"product_id" gorm:"size:36"`
	ProductName    string  `json:"product_name" gorm:"not null"`
	Quantity       int     `json:"quantity" gorm:"not null"`
	Dosage         string  `json:"dosage"`
	Instructions   string  `json:"instructions"`
	Price          float64 `json:"price"`
	IsAvailable    bool    `json:"is_available" gorm:"default:true"`
	PharmacyID     string  `json:"pharmacy_id" gorm:"size:36"`
}

// StatusEntry is one append-only audit log row for a prescription.
type StatusEntry struct {
	ID             uint               `json:"id" gorm:"primaryKey"`
	PrescriptionID string             `json:"prescription_id" gorm:"index;size:36"`
	Status         PrescriptionStatus `json:"status" gorm:"type:varchar(20);not null"`
	Timestamp      time.Time          `json:"timestamp" gorm:"not null"`
	UserID         string             `json:"user_id"`
	UserName       string             `json:"user_name"`
	UserRole       string             `json:"user_role"`
	Notes          string             `json:"notes"`
}

// PatientInfo carries the intake fields for a new prescription.
type PatientInfo struct {
	PatientName    string `json:"patient_name"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	DoctorName     string `json:"doctor_name"`
	HospitalClinic string `json:"hospital_clinic"`
}

// QualityChecks is the reviewer checklist required before approval.
type QualityChecks struct {
	PrescriptionClear    bool `json:"prescription_clear"`
	DosageVerified       bool `json:"dosage_verified"`
	InteractionsChecked  bool `json:"interactions_checked"`
	PatientInfoConfirmed bool `json:"patient_info_confirmed"`
}

// Failing returns the names of unchecked items, empty when all pass.
func (q QualityChecks) Failing() []string {
	var failing []string
	if !q.PrescriptionClear {
		failing = append(failing, "prescription_clear")
	}
	if !q.DosageVerified {
		failing = append(failing, "dosage_verified")
	}
	if !q.InteractionsChecked {
		failing = append(failing, "interactions_checked")
	}
	if !q.PatientInfoConfirmed {
		failing = append(failing, "patient_info_confirmed")
	}
	return failing
}

// Actor identifies who performed a mutating call, for audit attribution.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
