package models

import (
	"time"

	"gorm.io/gorm"
)

type SuspendedOrderStatus string

const (
	OrderSuspended  SuspendedOrderStatus = "suspended"
	OrderInProgress SuspendedOrderStatus = "in-progress"
	OrderResolved   SuspendedOrderStatus = "resolved"
	OrderCancelled  SuspendedOrderStatus = "cancelled"
)

type OrderPriority string

const (
	PriorityUrgent OrderPriority = "urgent"
	PriorityHigh   OrderPriority = "high"
	PriorityNormal OrderPriority = "normal"
	PriorityLow    OrderPriority = "low"
)

// Bump returns the next priority up; urgent stays urgent.
func (p OrderPriority) Bump() OrderPriority {
	switch p {
	case PriorityLow:
		return PriorityNormal
	case PriorityNormal:
		return PriorityHigh
	case PriorityHigh:
		return PriorityUrgent
	}
	return PriorityUrgent
}

type UnitType string

const (
	UnitBox     UnitType = "box"
	UnitBlister UnitType = "blister"
	UnitBottle  UnitType = "bottle"
)

// ItemState is the three-way diff state of a suspended order line.
// An item is exactly one of these; "added" and "removed" never combine
// (removing an added item deletes the row outright).
type ItemState string

const (
	ItemUnchanged ItemState = "unchanged"
	ItemModified  ItemState = "modified"
	ItemAdded     ItemState = "added"
	ItemRemoved   ItemState = "removed"
)

type SuspendedOrder struct {
	ID            string               `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber   string               `json:"order_number" gorm:"unique;not null"`
	PharmacyID    string               `json:"pharmacy_id" gorm:"index;size:36"`
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone"`
	IssueType     string               `json:"issue_type" gorm:"not null"`
	IssueNotes    string               `json:"issue_notes"`
	Priority      OrderPriority        `json:"priority" gorm:"type:varchar(10);default:'normal'"`
	Status        SuspendedOrderStatus `json:"status" gorm:"type:varchar(15);index;not null"`

	EscalationLevel     int     `json:"escalation_level" gorm:"default:0"`
	OriginalTotalAmount float64 `json:"original_total_amount"`
	TotalAmount         float64 `json:"total_amount"`
	ModificationNotes   string  `json:"modification_notes"`

	Items []SuspendedOrderItem `json:"items" gorm:"foreignKey:OrderID"`

	ModifiedAt *time.Time     `json:"modified_at"`
	ResolvedAt *time.Time     `json:"resolved_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// SuspendedOrderItem keeps both the current and the original line values so
// the original snapshot stays reconstructable after any modification.
type SuspendedOrderItem struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID      string    `json:"order_id" gorm:"index;size:36"`
	ProductID    string    `json:"product_id" gorm:"size:36"`
	ProductName  string    `json:"product_name" gorm:"not null"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	UnitPrice    float64   `json:"unit_price" gorm:"not null"`
	TotalPrice   float64   `json:"total_price" gorm:"not null"`
	UnitType     UnitType  `json:"unit_type" gorm:"type:varchar(10);default:'box'"`
	Prescription bool      `json:"prescription" gorm:"default:false"`
	State        ItemState `json:"state" gorm:"type:varchar(10);default:'unchanged'"`

	OriginalQuantity   int      `json:"original_quantity"`
	OriginalUnitType   UnitType `json:"original_unit_type" gorm:"type:varchar(10)"`
	OriginalTotalPrice float64  `json:"original_total_price"`
}

// OriginalItems reconstructs the immutable intake snapshot: every non-added
// item with its original quantity, unit type and price.
func (o *SuspendedOrder) OriginalItems() []SuspendedOrderItem {
	var items []SuspendedOrderItem
	for _, it := range o.Items {
		if it.State == ItemAdded {
			continue
		}
		orig := it
		orig.Quantity = it.OriginalQuantity
		orig.UnitType = it.OriginalUnitType
		orig.TotalPrice = it.OriginalTotalPrice
		orig.State = ItemUnchanged
		items = append(items, orig)
	}
	return items
}

// ModifiedItems returns the proposed line set, or nil when no modification
// has been made yet.
func (o *SuspendedOrder) ModifiedItems() []SuspendedOrderItem {
	if o.ModifiedAt == nil {
		return nil
	}
	return o.ActiveItems()
}

// ActiveItems returns every item not flagged removed.
func (o *SuspendedOrder) ActiveItems() []SuspendedOrderItem {
	var items []SuspendedOrderItem
	for _, it := range o.Items {
		if it.State == ItemRemoved {
			continue
		}
		items = append(items, it)
	}
	return items
}

// ActiveTotal sums TotalPrice over the active item set.
func (o *SuspendedOrder) ActiveTotal() float64 {
	total := 0.0
	for _, it := range o.Items {
		if it.State != ItemRemoved {
			total += it.TotalPrice
		}
	}
	return total
}
