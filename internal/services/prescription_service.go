package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"medimarket/internal/models"
	"medimarket/internal/redis"
	"medimarket/internal/repository"

	"github.com/google/uuid"
)

// MedicinePatch carries partial updates for one processed medicine.
type MedicinePatch struct {
	Quantity     *int     `json:"quantity"`
	Dosage       *string  `json:"dosage"`
	Instructions *string  `json:"instructions"`
	Price        *float64 `json:"price"`
	IsAvailable  *bool    `json:"is_available"`
	PharmacyID   *string  `json:"pharmacy_id"`
}

// PrescriptionFilter narrows prescription listings.
type PrescriptionFilter struct {
	Statuses   []models.PrescriptionStatus
	Urgency    models.Urgency
	ReaderID   string
	CustomerID string
	Query      string // matched against patient and customer name
}

type PrescriptionService interface {
	Submit(info models.PatientInfo, files []models.PrescriptionFile, urgency models.Urgency, actor models.Actor) (*models.Prescription, error)
	AssignReader(id, readerID string, actor models.Actor) error
	AddMedicine(id string, medicine models.ProcessedMedicine, actor models.Actor) ([]InteractionWarning, error)
	UpdateMedicine(id, medicineID string, patch MedicinePatch, actor models.Actor) ([]InteractionWarning, error)
	RemoveMedicine(id, medicineID string, actor models.Actor) error
	UpdateStatus(id string, newStatus models.PrescriptionStatus, actor models.Actor, notes string, checks models.QualityChecks) (*models.Prescription, error)
	GetByID(id string) (*models.Prescription, error)
	ListByStatus(statuses []models.PrescriptionStatus) ([]models.Prescription, error)
	FilterAndSort(filter PrescriptionFilter, sortKey, sortOrder string) ([]models.Prescription, error)
	CheckInteractions(id string) ([]InteractionWarning, error)
}

type prescriptionService struct {
	repo         repository.PrescriptionRepository
	catalog      repository.CatalogRepository
	interactions MedicineInteractionService
	notifier     NotificationService
	cache        *redis.Client
	locks        keyedMutex
}

func NewPrescriptionService(
	repo repository.PrescriptionRepository,
	catalog repository.CatalogRepository,
	interactions MedicineInteractionService,
	notifier NotificationService,
	cache *redis.Client,
) PrescriptionService {
	return &prescriptionService{
		repo:         repo,
		catalog:      catalog,
		interactions: interactions,
		notifier:     notifier,
		cache:        cache,
	}
}

func (s *prescriptionService) Submit(info models.PatientInfo, files []models.PrescriptionFile, urgency models.Urgency, actor models.Actor) (*models.Prescription, error) {
	if len(files) == 0 {
		return nil, &ValidationError{Msg: "at least one prescription file is required"}
	}
	if strings.TrimSpace(info.PatientName) == "" {
		return nil, &ValidationError{Msg: "patient name is required"}
	}
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	now := time.Now()
	p := &models.Prescription{
		ID:             uuid.New().String(),
		PatientName:    info.PatientName,
		CustomerID:     info.CustomerID,
		CustomerName:   info.CustomerName,
		CustomerPhone:  info.CustomerPhone,
		DoctorName:     info.DoctorName,
		HospitalClinic: info.HospitalClinic,
		CurrentStatus:  models.PrescriptionSubmitted,
		Urgency:        urgency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, f := range files {
		if f.Type != models.FileImage && f.Type != models.FilePDF {
			return nil, &ValidationError{Msg: "file type must be image or pdf"}
		}
		f.ID = uuid.New().String()
		f.PrescriptionID = p.ID
		p.Files = append(p.Files, f)
	}

	p.History = []models.StatusEntry{{
		PrescriptionID: p.ID,
		Status:         models.PrescriptionSubmitted,
		Timestamp:      now,
		UserID:         actor.ID,
		UserName:       actor.Name,
		UserRole:       actor.Role,
		Notes:          "Prescription submitted",
	}}

	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	s.cacheStatus(p)
	return p, nil
}

func (s *prescriptionService) AssignReader(id, readerID string, actor models.Actor) error {
	if strings.TrimSpace(readerID) == "" {
		return &ValidationError{Msg: "reader id is required"}
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.get(id)
	if err != nil {
		return err
	}
	if p.CurrentStatus != models.PrescriptionSubmitted && p.CurrentStatus != models.PrescriptionSuspended {
		return &InvalidStateError{Op: "assign reader", Current: string(p.CurrentStatus)}
	}

	p.AssignedReaderID = readerID
	p.UpdatedAt = time.Now()
	return s.repo.Update(p)
}

func (s *prescriptionService) AddMedicine(id string, medicine models.ProcessedMedicine, actor models.Actor) ([]InteractionWarning, error) {
	if medicine.Quantity < 1 {
		return nil, &ValidationError{Msg: "medicine quantity must be at least 1"}
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(p, "add medicine"); err != nil {
		return nil, err
	}

	// Fill price/name/dosage from the catalog when only a product id was given.
	if medicine.ProductID != "" && (medicine.ProductName == "" || medicine.Price == 0) {
		if product, err := s.catalog.FindProduct(medicine.ProductID); err == nil {
			if medicine.ProductName == "" {
				medicine.ProductName = product.Name
			}
			if medicine.Price == 0 {
				medicine.Price = product.Price
			}
			if medicine.Dosage == "" {
				medicine.Dosage = product.Dosage
			}
		}
	}
	if strings.TrimSpace(medicine.ProductName) == "" {
		return nil, &ValidationError{Msg: "medicine product name is required"}
	}

	medicine.ID = uuid.New().String()
	medicine.PrescriptionID = p.ID
	p.Medicines = append(p.Medicines, medicine)
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return s.checkInteractions(p), nil
}

func (s *prescriptionService) UpdateMedicine(id, medicineID string, patch MedicinePatch, actor models.Actor) ([]InteractionWarning, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(p, "update medicine"); err != nil {
		return nil, err
	}

	idx := -1
	for i := range p.Medicines {
		if p.Medicines[i].ID == medicineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Resource: "medicine", ID: medicineID}
	}

	m := &p.Medicines[idx]
	if patch.Quantity != nil {
		if *patch.Quantity < 1 {
			return nil, &ValidationError{Msg: "medicine quantity must be at least 1"}
		}
		m.Quantity = *patch.Quantity
	}
	if patch.Dosage != nil {
		m.Dosage = *patch.Dosage
	}
	if patch.Instructions != nil {
		m.Instructions = *patch.Instructions
	}
	if patch.Price != nil {
		m.Price = *patch.Price
	}
	if patch.IsAvailable != nil {
		m.IsAvailable = *patch.IsAvailable
	}
	if patch.PharmacyID != nil {
		m.PharmacyID = *patch.PharmacyID
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return s.checkInteractions(p), nil
}

func (s *prescriptionService) RemoveMedicine(id, medicineID string, actor models.Actor) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.get(id)
	if err != nil {
		return err
	}
	if err := s.requireEditable(p, "remove medicine"); err != nil {
		return err
	}

	found := false
	kept := p.Medicines[:0]
	for _, m := range p.Medicines {
		if m.ID == medicineID {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return &NotFoundError{Resource: "medicine", ID: medicineID}
	}
	p.Medicines = kept

	if err := s.repo.DeleteMedicine(id, medicineID); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return s.repo.Update(p)
}

func (s *prescriptionService) UpdateStatus(id string, newStatus models.PrescriptionStatus, actor models.Actor, notes string, checks models.QualityChecks) (*models.Prescription, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.get(id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(p.CurrentStatus, newStatus) {
		return nil, &InvalidTransitionError{From: string(p.CurrentStatus), To: string(newStatus)}
	}

	switch newStatus {
	case models.PrescriptionApproved:
		if failing := approvalGate(p, checks); len(failing) > 0 {
			return nil, &QualityGateError{Failing: failing}
		}
		p.TotalAmount = medicinesTotal(p.Medicines)
	case models.PrescriptionRejected:
		if strings.TrimSpace(notes) == "" {
			return nil, &ValidationError{Msg: "rejection reason is required"}
		}
		p.RejectionReason = notes
	}

	// History entry, currentStatus and updatedAt move together in one write.
	// Timestamps never run backwards within one prescription's log.
	ts := time.Now()
	if n := len(p.History); n > 0 && ts.Before(p.History[n-1].Timestamp) {
		ts = p.History[n-1].Timestamp
	}
	p.History = append(p.History, models.StatusEntry{
		PrescriptionID: p.ID,
		Status:         newStatus,
		Timestamp:      ts,
		UserID:         actor.ID,
		UserName:       actor.Name,
		UserRole:       actor.Role,
		Notes:          notes,
	})
	p.CurrentStatus = newStatus
	p.UpdatedAt = ts

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	s.cacheStatus(p)
	if s.notifier != nil {
		s.notifier.NotifyPrescriptionStatus(p)
	}
	return p, nil
}

func approvalGate(p *models.Prescription, checks models.QualityChecks) []string {
	var failing []string
	if len(p.Medicines) == 0 {
		failing = append(failing, "no processed medicines")
	}
	for _, m := range p.Medicines {
		if strings.TrimSpace(m.Instructions) == "" {
			failing = append(failing, "missing instructions for "+m.ProductName)
		}
	}
	return append(failing, checks.Failing()...)
}

func medicinesTotal(medicines []models.ProcessedMedicine) float64 {
	total := 0.0
	for _, m := range medicines {
		total += m.Price * float64(m.Quantity)
	}
	return total
}

func (s *prescriptionService) GetByID(id string) (*models.Prescription, error) {
	return s.get(id)
}

func (s *prescriptionService) ListByStatus(statuses []models.PrescriptionStatus) ([]models.Prescription, error) {
	return s.repo.GetByStatuses(statuses)
}

func (s *prescriptionService) FilterAndSort(filter PrescriptionFilter, sortKey, sortOrder string) ([]models.Prescription, error) {
	var (
		prescriptions []models.Prescription
		err           error
	)
	if len(filter.Statuses) > 0 {
		prescriptions, err = s.repo.GetByStatuses(filter.Statuses)
	} else {
		prescriptions, err = s.repo.GetAll()
	}
	if err != nil {
		return nil, err
	}

	filtered := prescriptions[:0]
	for _, p := range prescriptions {
		if filter.Urgency != "" && p.Urgency != filter.Urgency {
			continue
		}
		if filter.ReaderID != "" && p.AssignedReaderID != filter.ReaderID {
			continue
		}
		if filter.CustomerID != "" && p.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(p.PatientName), q) &&
				!strings.Contains(strings.ToLower(p.CustomerName), q) {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	asc := sortOrder == "asc"
	less := func(i, j int) bool { return filtered[i].CreatedAt.Before(filtered[j].CreatedAt) }
	switch sortKey {
	case "urgency":
		less = func(i, j int) bool { return filtered[i].Urgency.Rank() < filtered[j].Urgency.Rank() }
	case "patient_name":
		less = func(i, j int) bool { return filtered[i].PatientName < filtered[j].PatientName }
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if asc {
			return less(i, j)
		}
		return less(j, i)
	})
	return filtered, nil
}

func (s *prescriptionService) CheckInteractions(id string) ([]InteractionWarning, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.checkInteractions(p), nil
}

// checkInteractions builds catalog-enriched profiles and runs the advisory
// check. Only meaningful with two or more medicines.
func (s *prescriptionService) checkInteractions(p *models.Prescription) []InteractionWarning {
	if s.interactions == nil || len(p.Medicines) < 2 {
		return nil
	}
	profiles := make([]MedicineProfile, 0, len(p.Medicines))
	for _, m := range p.Medicines {
		profile := MedicineProfile{ID: m.ProductID, Name: m.ProductName}
		if m.ProductID != "" && s.catalog != nil {
			if product, err := s.catalog.FindProduct(m.ProductID); err == nil {
				profile.ActiveIngredient = product.ActiveIngredient
				profile.Category = product.Category
			}
		}
		profiles = append(profiles, profile)
	}
	return s.interactions.CheckInteractions(profiles)
}

func (s *prescriptionService) requireEditable(p *models.Prescription, op string) error {
	if p.CurrentStatus != models.PrescriptionReviewing && p.CurrentStatus != models.PrescriptionSuspended {
		return &InvalidStateError{Op: op, Current: string(p.CurrentStatus)}
	}
	return nil
}

func (s *prescriptionService) get(id string) (*models.Prescription, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "prescription", ID: id}
		}
		return nil, err
	}
	return p, nil
}

func (s *prescriptionService) cacheStatus(p *models.Prescription) {
	if s.cache == nil {
		return
	}
	// Cache misses are harmless; the repository stays authoritative.
	_ = s.cache.SetPrescriptionStatus(p.ID, p.CurrentStatus)
}
