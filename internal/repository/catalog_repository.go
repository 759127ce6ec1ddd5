package repository

import (
	"errors"

	"medimarket/internal/models"

	"gorm.io/gorm"
)

type CatalogRepository interface {
	Create(p *models.CatalogProduct) error
	FindProduct(id string) (*models.CatalogProduct, error)
	SearchByName(query string) ([]models.CatalogProduct, error)
	GetAll() ([]models.CatalogProduct, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Create(p *models.CatalogProduct) error {
	return r.db.Create(p).Error
}

func (r *catalogRepository) FindProduct(id string) (*models.CatalogProduct, error) {
	var p models.CatalogProduct
	err := r.db.Where("is_active = ?", true).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) SearchByName(query string) ([]models.CatalogProduct, error) {
	var products []models.CatalogProduct
	err := r.db.Where("is_active = ? AND (name ILIKE ? OR generic_name ILIKE ?)",
		true, "%"+query+"%", "%"+query+"%").Find(&products).Error
	return products, err
}

func (r *catalogRepository) GetAll() ([]models.CatalogProduct, error) {
	var products []models.CatalogProduct
	err := r.db.Where("is_active = ?", true).Find(&products).Error
	return products, err
}
