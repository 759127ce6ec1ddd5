package repository

import (
	"errors"

	"medimarket/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when the requested record
// does not exist, regardless of the backing store.
var ErrNotFound = errors.New("record not found")

type PrescriptionRepository interface {
	Create(p *models.Prescription) error
	GetByID(id string) (*models.Prescription, error)
	Update(p *models.Prescription) error
	DeleteMedicine(prescriptionID, medicineID string) error
	GetByStatuses(statuses []models.PrescriptionStatus) ([]models.Prescription, error)
	GetByReader(readerID string) ([]models.Prescription, error)
	GetAll() ([]models.Prescription, error)
}

type prescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(p *models.Prescription) error {
	return r.db.Create(p).Error
}

func (r *prescriptionRepository) GetByID(id string) (*models.Prescription, error) {
	var p models.Prescription
	err := r.db.Preload("Files").Preload("Medicines").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("status_entries.id ASC")
		}).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *prescriptionRepository) Update(p *models.Prescription) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error
}

func (r *prescriptionRepository) DeleteMedicine(prescriptionID, medicineID string) error {
	return r.db.Where("prescription_id = ? AND id = ?", prescriptionID, medicineID).
		Delete(&models.ProcessedMedicine{}).Error
}

func (r *prescriptionRepository) GetByStatuses(statuses []models.PrescriptionStatus) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := r.db.Preload("Files").Preload("Medicines").Preload("History").
		Where("current_status IN ?", statuses).Find(&prescriptions).Error
	return prescriptions, err
}

func (r *prescriptionRepository) GetByReader(readerID string) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := r.db.Preload("Files").Preload("Medicines").Preload("History").
		Where("assigned_reader_id = ?", readerID).Find(&prescriptions).Error
	return prescriptions, err
}

func (r *prescriptionRepository) GetAll() ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := r.db.Preload("Files").Preload("Medicines").Preload("History").
		Find(&prescriptions).Error
	return prescriptions, err
}
