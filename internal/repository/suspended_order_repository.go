package repository

import (
	"errors"

	"medimarket/internal/models"

	"gorm.io/gorm"
)

type SuspendedOrderRepository interface {
	Create(o *models.SuspendedOrder) error
	GetByID(id string) (*models.SuspendedOrder, error)
	Update(o *models.SuspendedOrder) error
	DeleteItem(orderID, itemID string) error
	GetByStatus(status models.SuspendedOrderStatus) ([]models.SuspendedOrder, error)
	GetByPharmacy(pharmacyID string) ([]models.SuspendedOrder, error)
	GetAll() ([]models.SuspendedOrder, error)
}

type suspendedOrderRepository struct {
	db *gorm.DB
}

func NewSuspendedOrderRepository(db *gorm.DB) SuspendedOrderRepository {
	return &suspendedOrderRepository{db: db}
}

func (r *suspendedOrderRepository) Create(o *models.SuspendedOrder) error {
	return r.db.Create(o).Error
}

func (r *suspendedOrderRepository) GetByID(id string) (*models.SuspendedOrder, error) {
	var o models.SuspendedOrder
	err := r.db.Preload("Items").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *suspendedOrderRepository) Update(o *models.SuspendedOrder) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error
}

func (r *suspendedOrderRepository) DeleteItem(orderID, itemID string) error {
	return r.db.Where("order_id = ? AND id = ?", orderID, itemID).
		Delete(&models.SuspendedOrderItem{}).Error
}

func (r *suspendedOrderRepository) GetByStatus(status models.SuspendedOrderStatus) ([]models.SuspendedOrder, error) {
	var orders []models.SuspendedOrder
	err := r.db.Preload("Items").Where("status = ?", status).Find(&orders).Error
	return orders, err
}

func (r *suspendedOrderRepository) GetByPharmacy(pharmacyID string) ([]models.SuspendedOrder, error) {
	var orders []models.SuspendedOrder
	err := r.db.Preload("Items").Where("pharmacy_id = ?", pharmacyID).Find(&orders).Error
	return orders, err
}

func (r *suspendedOrderRepository) GetAll() ([]models.SuspendedOrder, error) {
	var orders []models.SuspendedOrder
	err := r.db.Preload("Items").Find(&orders).Error
	return orders, err
}
