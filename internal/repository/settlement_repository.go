package repository

import (
	"errors"
	"time"

	"medimarket/internal/models"

	"gorm.io/gorm"
)

type SettlementRepository interface {
	CreateTransaction(tx *models.MoneyTransaction) error
	GetTransactions(from, to time.Time) ([]models.MoneyTransaction, error)
	GetTransactionsByEntity(entityID string) ([]models.MoneyTransaction, error)

	GetCommission(entityID string, entityType models.EntityType) (*models.EntityCommission, error)
	SaveCommission(c *models.EntityCommission) error
	GetCommissions(entityType models.EntityType) ([]models.EntityCommission, error)

	CreateRefund(r *models.RefundRequest) error
	GetRefund(id string) (*models.RefundRequest, error)
	UpdateRefund(r *models.RefundRequest) error
	GetRefundsByStatus(status models.RefundStatus) ([]models.RefundRequest, error)

	CreatePayout(p *models.PayoutSchedule) error
	UpdatePayout(p *models.PayoutSchedule) error
	GetPayout(id uint) (*models.PayoutSchedule, error)
	GetActivePayout(entityID string, entityType models.EntityType) (*models.PayoutSchedule, error)
	GetDuePayouts(asOf time.Time) ([]models.PayoutSchedule, error)
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) CreateTransaction(tx *models.MoneyTransaction) error {
	return r.db.Create(tx).Error
}

func (r *settlementRepository) GetTransactions(from, to time.Time) ([]models.MoneyTransaction, error) {
	var txs []models.MoneyTransaction
	err := r.db.Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at ASC").Find(&txs).Error
	return txs, err
}

func (r *settlementRepository) GetTransactionsByEntity(entityID string) ([]models.MoneyTransaction, error) {
	var txs []models.MoneyTransaction
	err := r.db.Where("entity_id = ?", entityID).Order("created_at ASC").Find(&txs).Error
	return txs, err
}

func (r *settlementRepository) GetCommission(entityID string, entityType models.EntityType) (*models.EntityCommission, error) {
	var c models.EntityCommission
	err := r.db.Where("entity_id = ? AND entity_type = ?", entityID, entityType).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *settlementRepository) SaveCommission(c *models.EntityCommission) error {
	return r.db.Save(c).Error
}

func (r *settlementRepository) GetCommissions(entityType models.EntityType) ([]models.EntityCommission, error) {
	var commissions []models.EntityCommission
	err := r.db.Where("entity_type = ?", entityType).Find(&commissions).Error
	return commissions, err
}

func (r *settlementRepository) CreateRefund(req *models.RefundRequest) error {
	return r.db.Create(req).Error
}

func (r *settlementRepository) GetRefund(id string) (*models.RefundRequest, error) {
	var req models.RefundRequest
	err := r.db.First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *settlementRepository) UpdateRefund(req *models.RefundRequest) error {
	return r.db.Save(req).Error
}

func (r *settlementRepository) GetRefundsByStatus(status models.RefundStatus) ([]models.RefundRequest, error) {
	var reqs []models.RefundRequest
	err := r.db.Where("status = ?", status).Find(&reqs).Error
	return reqs, err
}

func (r *settlementRepository) CreatePayout(p *models.PayoutSchedule) error {
	return r.db.Create(p).Error
}

func (r *settlementRepository) UpdatePayout(p *models.PayoutSchedule) error {
	return r.db.Save(p).Error
}

func (r *settlementRepository) GetPayout(id uint) (*models.PayoutSchedule, error) {
	var p models.PayoutSchedule
	err := r.db.First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *settlementRepository) GetActivePayout(entityID string, entityType models.EntityType) (*models.PayoutSchedule, error) {
	var p models.PayoutSchedule
	err := r.db.Where("entity_id = ? AND entity_type = ? AND status = ?",
		entityID, entityType, models.PayoutActive).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *settlementRepository) GetDuePayouts(asOf time.Time) ([]models.PayoutSchedule, error) {
	var payouts []models.PayoutSchedule
	err := r.db.Where("status = ? AND next_payout <= ? AND pending_amount >= minimum_amount",
		models.PayoutActive, asOf).Find(&payouts).Error
	return payouts, err
}
