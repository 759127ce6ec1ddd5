package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"medimarket/internal/models"
)

// In-memory repositories backing the same interfaces as the gorm ones.
// They store and hand out copies so callers never share state with the
// store, mirroring a real round trip through the database.

type memoryPrescriptionRepository struct {
	mu      sync.Mutex
	records map[string]models.Prescription
	histSeq uint
}

func NewMemoryPrescriptionRepository() PrescriptionRepository {
	return &memoryPrescriptionRepository{records: make(map[string]models.Prescription)}
}

func copyPrescription(p models.Prescription) models.Prescription {
	cp := p
	cp.Files = append([]models.PrescriptionFile(nil), p.Files...)
	cp.Medicines = append([]models.ProcessedMedicine(nil), p.Medicines...)
	cp.History = append([]models.StatusEntry(nil), p.History...)
	return cp
}

func (r *memoryPrescriptionRepository) put(p *models.Prescription) {
	for i := range p.History {
		if p.History[i].ID == 0 {
			r.histSeq++
			p.History[i].ID = r.histSeq
		}
	}
	r.records[p.ID] = copyPrescription(*p)
}

func (r *memoryPrescriptionRepository) Create(p *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(p)
	return nil
}

func (r *memoryPrescriptionRepository) GetByID(id string) (*models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyPrescription(p)
	return &cp, nil
}

func (r *memoryPrescriptionRepository) Update(p *models.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[p.ID]; !ok {
		return ErrNotFound
	}
	r.put(p)
	return nil
}

func (r *memoryPrescriptionRepository) DeleteMedicine(prescriptionID, medicineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[prescriptionID]
	if !ok {
		return ErrNotFound
	}
	kept := p.Medicines[:0]
	for _, m := range p.Medicines {
		if m.ID != medicineID {
			kept = append(kept, m)
		}
	}
	p.Medicines = kept
	r.records[prescriptionID] = p
	return nil
}

func (r *memoryPrescriptionRepository) GetByStatuses(statuses []models.PrescriptionStatus) ([]models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[models.PrescriptionStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.Prescription
	for _, p := range r.records {
		if want[p.CurrentStatus] {
			out = append(out, copyPrescription(p))
		}
	}
	sortPrescriptions(out)
	return out, nil
}

func (r *memoryPrescriptionRepository) GetByReader(readerID string) ([]models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Prescription
	for _, p := range r.records {
		if p.AssignedReaderID == readerID {
			out = append(out, copyPrescription(p))
		}
	}
	sortPrescriptions(out)
	return out, nil
}

func (r *memoryPrescriptionRepository) GetAll() ([]models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Prescription
	for _, p := range r.records {
		out = append(out, copyPrescription(p))
	}
	sortPrescriptions(out)
	return out, nil
}

// stable order for map-backed listings
func sortPrescriptions(ps []models.Prescription) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].ID < ps[j].ID
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}

type memorySuspendedOrderRepository struct {
	mu      sync.Mutex
	records map[string]models.SuspendedOrder
}

func NewMemorySuspendedOrderRepository() SuspendedOrderRepository {
	return &memorySuspendedOrderRepository{records: make(map[string]models.SuspendedOrder)}
}

func copySuspendedOrder(o models.SuspendedOrder) models.SuspendedOrder {
	cp := o
	cp.Items = append([]models.SuspendedOrderItem(nil), o.Items...)
	return cp
}

func (r *memorySuspendedOrderRepository) Create(o *models.SuspendedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[o.ID] = copySuspendedOrder(*o)
	return nil
}

func (r *memorySuspendedOrderRepository) GetByID(id string) (*models.SuspendedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copySuspendedOrder(o)
	return &cp, nil
}

func (r *memorySuspendedOrderRepository) Update(o *models.SuspendedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[o.ID]; !ok {
		return ErrNotFound
	}
	r.records[o.ID] = copySuspendedOrder(*o)
	return nil
}

func (r *memorySuspendedOrderRepository) DeleteItem(orderID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.records[orderID]
	if !ok {
		return ErrNotFound
	}
	kept := o.Items[:0]
	for _, it := range o.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	o.Items = kept
	r.records[orderID] = o
	return nil
}

func (r *memorySuspendedOrderRepository) GetByStatus(status models.SuspendedOrderStatus) ([]models.SuspendedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SuspendedOrder
	for _, o := range r.records {
		if o.Status == status {
			out = append(out, copySuspendedOrder(o))
		}
	}
	sortSuspendedOrders(out)
	return out, nil
}

func (r *memorySuspendedOrderRepository) GetByPharmacy(pharmacyID string) ([]models.SuspendedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SuspendedOrder
	for _, o := range r.records {
		if o.PharmacyID == pharmacyID {
			out = append(out, copySuspendedOrder(o))
		}
	}
	sortSuspendedOrders(out)
	return out, nil
}

func (r *memorySuspendedOrderRepository) GetAll() ([]models.SuspendedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SuspendedOrder
	for _, o := range r.records {
		out = append(out, copySuspendedOrder(o))
	}
	sortSuspendedOrders(out)
	return out, nil
}

func sortSuspendedOrders(os []models.SuspendedOrder) {
	sort.Slice(os, func(i, j int) bool {
		if os[i].CreatedAt.Equal(os[j].CreatedAt) {
			return os[i].ID < os[j].ID
		}
		return os[i].CreatedAt.Before(os[j].CreatedAt)
	})
}

type memorySettlementRepository struct {
	mu           sync.Mutex
	transactions []models.MoneyTransaction
	commissions  map[string]models.EntityCommission
	refunds      map[string]models.RefundRequest
	payouts      map[uint]models.PayoutSchedule
	commSeq      uint
	payoutSeq    uint
}

func NewMemorySettlementRepository() SettlementRepository {
	return &memorySettlementRepository{
		commissions: make(map[string]models.EntityCommission),
		refunds:     make(map[string]models.RefundRequest),
		payouts:     make(map[uint]models.PayoutSchedule),
	}
}

func commissionKey(entityID string, entityType models.EntityType) string {
	return string(entityType) + ":" + entityID
}

func (r *memorySettlementRepository) CreateTransaction(tx *models.MoneyTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *memorySettlementRepository) GetTransactions(from, to time.Time) ([]models.MoneyTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MoneyTransaction
	for _, tx := range r.transactions {
		if !tx.CreatedAt.Before(from) && !tx.CreatedAt.After(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memorySettlementRepository) GetTransactionsByEntity(entityID string) ([]models.MoneyTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MoneyTransaction
	for _, tx := range r.transactions {
		if tx.EntityID == entityID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memorySettlementRepository) GetCommission(entityID string, entityType models.EntityType) (*models.EntityCommission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.commissions[commissionKey(entityID, entityType)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r *memorySettlementRepository) SaveCommission(c *models.EntityCommission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		r.commSeq++
		c.ID = r.commSeq
	}
	r.commissions[commissionKey(c.EntityID, c.EntityType)] = *c
	return nil
}

func (r *memorySettlementRepository) GetCommissions(entityType models.EntityType) ([]models.EntityCommission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EntityCommission
	for _, c := range r.commissions {
		if c.EntityType == entityType {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memorySettlementRepository) CreateRefund(req *models.RefundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds[req.ID] = *req
	return nil
}

func (r *memorySettlementRepository) GetRefund(id string) (*models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.refunds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := req
	return &cp, nil
}

func (r *memorySettlementRepository) UpdateRefund(req *models.RefundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refunds[req.ID]; !ok {
		return ErrNotFound
	}
	r.refunds[req.ID] = *req
	return nil
}

func (r *memorySettlementRepository) GetRefundsByStatus(status models.RefundStatus) ([]models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RefundRequest
	for _, req := range r.refunds {
		if req.Status == status {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memorySettlementRepository) CreatePayout(p *models.PayoutSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.payoutSeq++
		p.ID = r.payoutSeq
	}
	r.payouts[p.ID] = *p
	return nil
}

func (r *memorySettlementRepository) UpdatePayout(p *models.PayoutSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payouts[p.ID]; !ok {
		return ErrNotFound
	}
	r.payouts[p.ID] = *p
	return nil
}

func (r *memorySettlementRepository) GetPayout(id uint) (*models.PayoutSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *memorySettlementRepository) GetActivePayout(entityID string, entityType models.EntityType) (*models.PayoutSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payouts {
		if p.EntityID == entityID && p.EntityType == entityType && p.Status == models.PayoutActive {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memorySettlementRepository) GetDuePayouts(asOf time.Time) ([]models.PayoutSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PayoutSchedule
	for _, p := range r.payouts {
		if p.Status == models.PayoutActive && !p.NextPayout.After(asOf) && p.PendingAmount >= p.MinimumAmount {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryCatalogRepository struct {
	mu       sync.Mutex
	products map[string]models.CatalogProduct
}

func NewMemoryCatalogRepository() CatalogRepository {
	return &memoryCatalogRepository{products: make(map[string]models.CatalogProduct)}
}

func (r *memoryCatalogRepository) Create(p *models.CatalogProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memoryCatalogRepository) FindProduct(id string) (*models.CatalogProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.IsActive {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *memoryCatalogRepository) SearchByName(query string) ([]models.CatalogProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.CatalogProduct
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.GenericName), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryCatalogRepository) GetAll() ([]models.CatalogProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CatalogProduct
	for _, p := range r.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
