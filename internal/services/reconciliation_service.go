package services

import (
	"errors"
	"strings"
	"time"

	"medimarket/internal/models"
	"medimarket/internal/repository"

	"github.com/google/uuid"
)

// SuspendInput snapshots an order a pharmacy cannot fulfill as placed.
type SuspendInput struct {
	OrderNumber   string                      `json:"order_number"`
	PharmacyID    string                      `json:"pharmacy_id"`
	CustomerName  string                      `json:"customer_name"`
	CustomerPhone string                      `json:"customer_phone"`
	Items         []models.SuspendedOrderItem `json:"items"`
	IssueType     string                      `json:"issue_type"`
	IssueNotes    string                      `json:"issue_notes"`
	Priority      models.OrderPriority        `json:"priority"`
}

// NewOrderItem is a line the pharmacy proposes to add. When UnitPrice is
// zero the catalog price for ProductID is used.
type NewOrderItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    float64         `json:"unit_price"`
	UnitType     models.UnitType `json:"unit_type"`
	Prescription bool            `json:"prescription"`
}

// ItemChange adjusts quantity and/or unit type of an existing line.
type ItemChange struct {
	ItemID      string           `json:"item_id"`
	NewQuantity *int             `json:"new_quantity"`
	NewUnitType *models.UnitType `json:"new_unit_type"`
}

// OrderModification is the pharmacy's proposed diff against the original order.
type OrderModification struct {
	ItemsToRemove []string       `json:"items_to_remove"`
	ItemsToAdd    []NewOrderItem `json:"items_to_add"`
	ItemsToModify []ItemChange   `json:"items_to_modify"`
	Notes         string         `json:"notes"`
}

type ReconciliationService interface {
	Suspend(in SuspendInput, actor models.Actor) (*models.SuspendedOrder, error)
	ModifyOrder(orderID string, mod OrderModification, actor models.Actor) (*models.SuspendedOrder, error)
	RestoreItem(orderID, itemID string, actor models.Actor) (*models.SuspendedOrder, error)
	Approve(orderID string, actor models.Actor) error
	RejectModification(orderID string, actor models.Actor) error
	Escalate(orderID string, actor models.Actor) error
	GetByID(orderID string) (*models.SuspendedOrder, error)
	ListByStatus(status models.SuspendedOrderStatus) ([]models.SuspendedOrder, error)
	ListByPharmacy(pharmacyID string) ([]models.SuspendedOrder, error)
}

type reconciliationService struct {
	repo     repository.SuspendedOrderRepository
	catalog  repository.CatalogRepository
	notifier NotificationService
	locks    keyedMutex
}

func NewReconciliationService(
	repo repository.SuspendedOrderRepository,
	catalog repository.CatalogRepository,
	notifier NotificationService,
) ReconciliationService {
	return &reconciliationService{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
	}
}

func (s *reconciliationService) Suspend(in SuspendInput, actor models.Actor) (*models.SuspendedOrder, error) {
	if strings.TrimSpace(in.OrderNumber) == "" {
		return nil, &ValidationError{Msg: "order number is required"}
	}
	if len(in.Items) == 0 {
		return nil, &ValidationError{Msg: "a suspended order needs at least one item"}
	}
	if strings.TrimSpace(in.IssueType) == "" {
		return nil, &ValidationError{Msg: "issue type is required"}
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	now := time.Now()
	o := &models.SuspendedOrder{
		ID:            uuid.New().String(),
		OrderNumber:   in.OrderNumber,
		PharmacyID:    in.PharmacyID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		IssueType:     in.IssueType,
		IssueNotes:    in.IssueNotes,
		Priority:      in.Priority,
		Status:        models.OrderSuspended,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	total := 0.0
	for _, it := range in.Items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = o.ID
		it.TotalPrice = float64(it.Quantity) * it.UnitPrice
		it.State = models.ItemUnchanged
		it.OriginalQuantity = it.Quantity
		it.OriginalUnitType = it.UnitType
		it.OriginalTotalPrice = it.TotalPrice
		total += it.TotalPrice
		o.Items = append(o.Items, it)
	}
	o.OriginalTotalAmount = total
	o.TotalAmount = total

	if err := s.repo.Create(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *reconciliationService) ModifyOrder(orderID string, mod OrderModification, actor models.Actor) (*models.SuspendedOrder, error) {
	if strings.TrimSpace(mod.Notes) == "" {
		return nil, &ValidationError{Msg: "modification notes are required"}
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderSuspended && o.Status != models.OrderInProgress {
		return nil, &InvalidStateError{Op: "modify order", Current: string(o.Status)}
	}

	states := make(map[string]models.ItemState, len(o.Items))
	for i := range o.Items {
		states[o.Items[i].ID] = o.Items[i].State
	}
	for _, itemID := range mod.ItemsToRemove {
		if _, ok := states[itemID]; !ok {
			return nil, &NotFoundError{Resource: "order item", ID: itemID}
		}
	}
	for _, change := range mod.ItemsToModify {
		if _, ok := states[change.ItemID]; !ok {
			return nil, &NotFoundError{Resource: "order item", ID: change.ItemID}
		}
	}

	// Resolve every addition before touching the stored order, so a failed
	// catalog lookup cannot leave a partially applied modification behind.
	newItems := make([]models.SuspendedOrderItem, 0, len(mod.ItemsToAdd))
	for _, add := range mod.ItemsToAdd {
		qty := add.Quantity
		if qty < 1 {
			qty = 1
		}
		unitPrice := add.UnitPrice
		name := add.ProductName
		unitType := add.UnitType
		if unitPrice == 0 || name == "" {
			product, err := s.findProduct(add.ProductID)
			if err != nil {
				return nil, err
			}
			if unitPrice == 0 {
				unitPrice = product.Price
			}
			if name == "" {
				name = product.Name
			}
			if unitType == "" {
				unitType = product.UnitType
			}
		}
		newItems = append(newItems, models.SuspendedOrderItem{
			ID:           uuid.New().String(),
			OrderID:      o.ID,
			ProductID:    add.ProductID,
			ProductName:  name,
			Quantity:     qty,
			UnitPrice:    unitPrice,
			TotalPrice:   float64(qty) * unitPrice,
			UnitType:     unitType,
			Prescription: add.Prescription,
			State:        models.ItemAdded,
		})
	}

	// Removals next: a newly added line is deleted outright, everything
	// else is flagged and kept for audit.
	deleted := make(map[string]bool)
	for _, itemID := range mod.ItemsToRemove {
		if states[itemID] == models.ItemAdded {
			if err := s.repo.DeleteItem(o.ID, itemID); err != nil {
				return nil, err
			}
			deleted[itemID] = true
		}
	}
	if len(deleted) > 0 {
		kept := o.Items[:0]
		for _, it := range o.Items {
			if !deleted[it.ID] {
				kept = append(kept, it)
			}
		}
		o.Items = kept
	}

	byID := make(map[string]*models.SuspendedOrderItem, len(o.Items))
	for i := range o.Items {
		byID[o.Items[i].ID] = &o.Items[i]
	}
	removed := make(map[string]bool, len(mod.ItemsToRemove))
	for _, itemID := range mod.ItemsToRemove {
		removed[itemID] = true
		if item, ok := byID[itemID]; ok {
			item.State = models.ItemRemoved
		}
	}

	for _, change := range mod.ItemsToModify {
		// Removal wins when an item appears in both lists.
		if removed[change.ItemID] {
			continue
		}
		item, ok := byID[change.ItemID]
		if !ok {
			continue
		}
		if change.NewQuantity != nil {
			qty := *change.NewQuantity
			if qty < 1 {
				qty = 1
			}
			item.Quantity = qty
		}
		if change.NewUnitType != nil {
			item.UnitType = *change.NewUnitType
		}
		item.TotalPrice = float64(item.Quantity) * item.UnitPrice
		if item.State == models.ItemUnchanged {
			item.State = models.ItemModified
		}
	}

	o.Items = append(o.Items, newItems...)

	now := time.Now()
	o.TotalAmount = o.ActiveTotal()
	o.ModificationNotes = mod.Notes
	o.Status = models.OrderInProgress
	o.ModifiedAt = &now
	o.UpdatedAt = now

	if err := s.repo.Update(o); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyOrderModification(o)
	}
	return o, nil
}

// RestoreItem reverts one line to its original quantity, unit type and
// price. Calling it again on an already restored line is a no-op. Restoring
// an added line deletes it, since its original state is absence.
func (s *reconciliationService) RestoreItem(orderID, itemID string, actor models.Actor) (*models.SuspendedOrder, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderSuspended && o.Status != models.OrderInProgress {
		return nil, &InvalidStateError{Op: "restore item", Current: string(o.Status)}
	}

	idx := -1
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Resource: "order item", ID: itemID}
	}

	item := &o.Items[idx]
	switch item.State {
	case models.ItemUnchanged:
		return o, nil
	case models.ItemAdded:
		if err := s.repo.DeleteItem(o.ID, itemID); err != nil {
			return nil, err
		}
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	default:
		item.Quantity = item.OriginalQuantity
		item.UnitType = item.OriginalUnitType
		item.TotalPrice = item.OriginalTotalPrice
		item.State = models.ItemUnchanged
	}

	o.TotalAmount = o.ActiveTotal()
	o.UpdatedAt = time.Now()
	if err := s.repo.Update(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *reconciliationService) Approve(orderID string, actor models.Actor) error {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.Status != models.OrderInProgress || o.ModifiedAt == nil {
		return &InvalidStateError{Op: "approve modification", Current: string(o.Status)}
	}

	now := time.Now()
	o.Status = models.OrderResolved
	o.ResolvedAt = &now
	o.UpdatedAt = now

	if err := s.repo.Update(o); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyOrderResolved(o)
	}
	return nil
}

// RejectModification is the customer declining the pharmacy's proposal.
func (s *reconciliationService) RejectModification(orderID string, actor models.Actor) error {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.Status != models.OrderInProgress {
		return &InvalidStateError{Op: "reject modification", Current: string(o.Status)}
	}

	o.Status = models.OrderCancelled
	o.UpdatedAt = time.Now()
	return s.repo.Update(o)
}

func (s *reconciliationService) Escalate(orderID string, actor models.Actor) error {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.get(orderID)
	if err != nil {
		return err
	}
	if o.Status == models.OrderResolved || o.Status == models.OrderCancelled {
		return &InvalidStateError{Op: "escalate", Current: string(o.Status)}
	}

	o.EscalationLevel++
	o.Priority = o.Priority.Bump()
	o.UpdatedAt = time.Now()
	return s.repo.Update(o)
}

func (s *reconciliationService) GetByID(orderID string) (*models.SuspendedOrder, error) {
	return s.get(orderID)
}

func (s *reconciliationService) ListByStatus(status models.SuspendedOrderStatus) ([]models.SuspendedOrder, error) {
	return s.repo.GetByStatus(status)
}

func (s *reconciliationService) ListByPharmacy(pharmacyID string) ([]models.SuspendedOrder, error) {
	return s.repo.GetByPharmacy(pharmacyID)
}

func (s *reconciliationService) get(orderID string) (*models.SuspendedOrder, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "suspended order", ID: orderID}
		}
		return nil, err
	}
	return o, nil
}

func (s *reconciliationService) findProduct(productID string) (*models.CatalogProduct, error) {
	if s.catalog == nil || productID == "" {
		return nil, &NotFoundError{Resource: "product", ID: productID}
	}
	product, err := s.catalog.FindProduct(productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: productID}
		}
		return nil, err
	}
	return product, nil
}
