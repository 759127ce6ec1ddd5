package models

import (
	"time"
)

type TransactionType string

const (
	TxOrder      TransactionType = "order"
	TxCommission TransactionType = "commission"
	TxRefund     TransactionType = "refund"
	TxPayout     TransactionType = "payout"
	TxAdjustment TransactionType = "adjustment"
)

type TransactionStatus string

const (
	TxPending    TransactionStatus = "pending"
	TxProcessing TransactionStatus = "processing"
	TxCompleted  TransactionStatus = "completed"
	TxFailed     TransactionStatus = "failed"
	TxCancelled  TransactionStatus = "cancelled"
)

type EntityType string

const (
	EntityPharmacy EntityType = "pharmacy"
	EntityVendor   EntityType = "vendor"
	EntityDoctor   EntityType = "doctor"
	EntityCustomer EntityType = "customer"
	EntityPlatform EntityType = "platform"
)

// MoneyTransaction is an immutable ledger row; completed rows are never
// updated again.
type MoneyTransaction struct {
	ID          string            `json:"id" gorm:"primaryKey;size:36"`
	Type        TransactionType   `json:"type" gorm:"type:varchar(12);index;not null"`
	SubType     string            `json:"sub_type"`
	Amount      float64           `json:"amount" gorm:"not null"`
	Currency    string            `json:"currency" gorm:"size:8;default:'USD'"`
	Reference   string            `json:"reference"`
	EntityID    string            `json:"entity_id" gorm:"index;size:36"`
	EntityType  EntityType        `json:"entity_type" gorm:"type:varchar(10);index"`
	EntityName  string            `json:"entity_name"`
	Status      TransactionStatus `json:"status" gorm:"type:varchar(12);index;not null"`
	CreatedAt   time.Time         `json:"created_at"`
	ProcessedAt *time.Time        `json:"processed_at"`
}

type CollectionStatus string

const (
	CollectionPending   CollectionStatus = "pending"
	CollectionScheduled CollectionStatus = "scheduled"
	CollectionCompleted CollectionStatus = "completed"
)

// EntityCommission tracks what one pharmacy/vendor owes the platform.
// CommissionRate is a fraction (0.10 = 10%), configured per entity.
type EntityCommission struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	EntityID       string     `json:"entity_id" gorm:"size:36;uniqueIndex:idx_commission_entity"`
	EntityType     EntityType `json:"entity_type" gorm:"type:varchar(10);uniqueIndex:idx_commission_entity"`
	EntityName     string     `json:"entity_name"`
	CommissionRate float64    `json:"commission_rate" gorm:"not null"`

	TotalSales               float64 `json:"total_sales"`
	EntityRevenue            float64 `json:"entity_revenue"`
	CommissionOwed           float64 `json:"commission_owed"`
	PendingAmount            float64 `json:"pending_amount"`
	TotalCommissionCollected float64 `json:"total_commission_collected"`
	OutstandingBalance       float64 `json:"outstanding_balance"`

	CollectionStatus    CollectionStatus `json:"collection_status" gorm:"type:varchar(10);default:'pending'"`
	CollectionFrequency string           `json:"collection_frequency" gorm:"default:'weekly'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundProcessed RefundStatus = "processed"
)

type RefundRequest struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	OrderID      string       `json:"order_id" gorm:"index;size:36;not null"`
	CustomerID   string       `json:"customer_id" gorm:"size:36"`
	Amount       float64      `json:"amount" gorm:"not null"`
	Reason       string       `json:"reason"`
	Status       RefundStatus `json:"status" gorm:"type:varchar(10);index;default:'pending'"`
	RefundMethod string       `json:"refund_method"`
	Notes        string       `json:"notes"`
	CreatedAt    time.Time    `json:"created_at"`
	ProcessedAt  *time.Time   `json:"processed_at"`
}

type PayoutStatus string

const (
	PayoutActive    PayoutStatus = "active"
	PayoutPaused    PayoutStatus = "paused"
	PayoutCancelled PayoutStatus = "cancelled"
)

type PayoutSchedule struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	EntityID      string       `json:"entity_id" gorm:"index;size:36"`
	EntityType    EntityType   `json:"entity_type" gorm:"type:varchar(10)"`
	EntityName    string       `json:"entity_name"`
	Frequency     string       `json:"frequency" gorm:"default:'weekly'"` // weekly, biweekly, monthly
	NextPayout    time.Time    `json:"next_payout"`
	PendingAmount float64      `json:"pending_amount"`
	MinimumAmount float64      `json:"minimum_amount"`
	Status        PayoutStatus `json:"status" gorm:"type:varchar(10);default:'active'"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TransactionMetrics is an aggregate read over a time window. GrossVolume
// (total order value) and NetRevenue (what the platform actually earned)
// are deliberately separate numbers.
type TransactionMetrics struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	GrossVolume                 float64 `json:"gross_volume"`
	NetRevenue                  float64 `json:"net_revenue"`
	PharmacyCommissionCollected float64 `json:"pharmacy_commission_collected"`
	VendorCommissionCollected   float64 `json:"vendor_commission_collected"`
	DoctorCommissionPaid        float64 `json:"doctor_commission_paid"`
	RefundsProcessed            float64 `json:"refunds_processed"`
	PendingCommission           float64 `json:"pending_commission"`
	TransactionCount            int     `json:"transaction_count"`
}
