package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"medimarket/internal/models"
	"medimarket/internal/redis"
	"medimarket/internal/repository"

	"github.com/google/uuid"
)

const metricsCacheTTL = 5 * time.Minute

// SettlementService tracks commission obligations in a cash-on-delivery
// marketplace: the platform never holds funds, it records what fulfilling
// entities owe and collects after the fact.
type SettlementService interface {
	RecordOrderSettlement(entityID string, entityType models.EntityType, entityName string, orderAmount, commissionRate float64) ([]models.MoneyTransaction, error)
	CollectCommission(entityID string, entityType models.EntityType, actor models.Actor) (bool, error)
	RecordDoctorCommission(doctorID, doctorName string, amount float64, reference string) (*models.MoneyTransaction, error)
	RequestRefund(orderID, customerID string, amount float64, reason, refundMethod string) (*models.RefundRequest, error)
	ResolveRefund(refundID, action, notes string) (bool, error)
	SchedulePayout(entityID string, entityType models.EntityType, entityName, frequency string, minimumAmount float64) (*models.PayoutSchedule, error)
	SetPayoutStatus(payoutID uint, status models.PayoutStatus) error
	DuePayouts(asOf time.Time) ([]models.PayoutSchedule, error)
	ComputeMetrics(from, to time.Time) (*models.TransactionMetrics, error)
	GetCommission(entityID string, entityType models.EntityType) (*models.EntityCommission, error)
	ListCommissions(entityType models.EntityType) ([]models.EntityCommission, error)
	ListTransactions(from, to time.Time) ([]models.MoneyTransaction, error)
}

type settlementService struct {
	repo  repository.SettlementRepository
	cache *redis.Client
	locks keyedMutex
}

func NewSettlementService(repo repository.SettlementRepository, cache *redis.Client) SettlementService {
	return &settlementService{repo: repo, cache: cache}
}

// RecordOrderSettlement posts the monetary facts of one completed order:
// an order transaction for the full amount and a pending commission
// transaction for the platform's cut, then rolls both into the entity's
// commission record.
func (s *settlementService) RecordOrderSettlement(entityID string, entityType models.EntityType, entityName string, orderAmount, commissionRate float64) ([]models.MoneyTransaction, error) {
	if strings.TrimSpace(entityID) == "" {
		return nil, &ValidationError{Msg: "entity id is required"}
	}
	if entityType != models.EntityPharmacy && entityType != models.EntityVendor {
		return nil, &ValidationError{Msg: "settlements apply to pharmacies and vendors only"}
	}
	if orderAmount <= 0 {
		return nil, &ValidationError{Msg: "order amount must be positive"}
	}
	if commissionRate < 0 || commissionRate > 1 {
		return nil, &ValidationError{Msg: "commission rate must be a fraction between 0 and 1"}
	}

	unlock := s.locks.Lock(string(entityType) + ":" + entityID)
	defer unlock()

	now := time.Now()
	commissionAmount := orderAmount * commissionRate

	orderTx := models.MoneyTransaction{
		ID:         uuid.New().String(),
		Type:       models.TxOrder,
		Amount:     orderAmount,
		Currency:   "USD",
		Reference:  fmt.Sprintf("settlement-%s", entityID),
		EntityID:   entityID,
		EntityType: entityType,
		EntityName: entityName,
		Status:     models.TxPending,
		CreatedAt:  now,
	}
	commissionTx := models.MoneyTransaction{
		ID:         uuid.New().String(),
		Type:       models.TxCommission,
		SubType:    "accrual",
		Amount:     commissionAmount,
		Currency:   "USD",
		Reference:  orderTx.ID,
		EntityID:   entityID,
		EntityType: entityType,
		EntityName: entityName,
		Status:     models.TxPending,
		CreatedAt:  now,
	}

	if err := s.repo.CreateTransaction(&orderTx); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTransaction(&commissionTx); err != nil {
		return nil, err
	}

	commission, err := s.repo.GetCommission(entityID, entityType)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		commission = &models.EntityCommission{
			EntityID:            entityID,
			EntityType:          entityType,
			EntityName:          entityName,
			CommissionRate:      commissionRate,
			CollectionStatus:    models.CollectionPending,
			CollectionFrequency: "weekly",
			CreatedAt:           now,
		}
	}

	commission.CommissionRate = commissionRate
	commission.TotalSales += orderAmount
	commission.EntityRevenue += orderAmount - commissionAmount
	commission.CommissionOwed += commissionAmount
	commission.PendingAmount += commissionAmount
	commission.OutstandingBalance = commission.CommissionOwed - commission.TotalCommissionCollected
	commission.CollectionStatus = models.CollectionPending
	commission.UpdatedAt = now

	if err := s.repo.SaveCommission(commission); err != nil {
		return nil, err
	}

	// The entity's revenue share accrues on its active payout schedule
	// until it clears the minimum and becomes due.
	payout, err := s.repo.GetActivePayout(entityID, entityType)
	if err == nil {
		payout.PendingAmount += orderAmount - commissionAmount
		payout.UpdatedAt = now
		if err := s.repo.UpdatePayout(payout); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	s.invalidateMetrics()
	return []models.MoneyTransaction{orderTx, commissionTx}, nil
}

// CollectCommission sweeps the entity's pending balance. Nothing pending is
// a normal outcome, not an error: the method reports false and leaves
// everything untouched, so calling it twice is safe.
func (s *settlementService) CollectCommission(entityID string, entityType models.EntityType, actor models.Actor) (bool, error) {
	unlock := s.locks.Lock(string(entityType) + ":" + entityID)
	defer unlock()

	commission, err := s.repo.GetCommission(entityID, entityType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if commission.PendingAmount <= 0 {
		return false, nil
	}

	now := time.Now()
	collected := commission.PendingAmount

	commission.PendingAmount = 0
	commission.TotalCommissionCollected += collected
	commission.OutstandingBalance = commission.CommissionOwed - commission.TotalCommissionCollected
	commission.CollectionStatus = models.CollectionCompleted
	commission.UpdatedAt = now

	if err := s.repo.SaveCommission(commission); err != nil {
		return false, err
	}

	tx := models.MoneyTransaction{
		ID:          uuid.New().String(),
		Type:        models.TxCommission,
		SubType:     "collection",
		Amount:      collected,
		Currency:    "USD",
		Reference:   fmt.Sprintf("collection-%s", entityID),
		EntityID:    entityID,
		EntityType:  entityType,
		EntityName:  commission.EntityName,
		Status:      models.TxCompleted,
		CreatedAt:   now,
		ProcessedAt: &now,
	}
	if err := s.repo.CreateTransaction(&tx); err != nil {
		return false, err
	}

	s.invalidateMetrics()
	return true, nil
}

// RecordDoctorCommission pays out a referring doctor's share; doctors are
// on the paying side of platform revenue.
func (s *settlementService) RecordDoctorCommission(doctorID, doctorName string, amount float64, reference string) (*models.MoneyTransaction, error) {
	if strings.TrimSpace(doctorID) == "" {
		return nil, &ValidationError{Msg: "doctor id is required"}
	}
	if amount <= 0 {
		return nil, &ValidationError{Msg: "payout amount must be positive"}
	}

	now := time.Now()
	tx := models.MoneyTransaction{
		ID:          uuid.New().String(),
		Type:        models.TxPayout,
		SubType:     "doctor_commission",
		Amount:      amount,
		Currency:    "USD",
		Reference:   reference,
		EntityID:    doctorID,
		EntityType:  models.EntityDoctor,
		EntityName:  doctorName,
		Status:      models.TxCompleted,
		CreatedAt:   now,
		ProcessedAt: &now,
	}
	if err := s.repo.CreateTransaction(&tx); err != nil {
		return nil, err
	}
	s.invalidateMetrics()
	return &tx, nil
}

func (s *settlementService) RequestRefund(orderID, customerID string, amount float64, reason, refundMethod string) (*models.RefundRequest, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, &ValidationError{Msg: "order id is required"}
	}
	if amount <= 0 {
		return nil, &ValidationError{Msg: "refund amount must be positive"}
	}

	req := &models.RefundRequest{
		ID:           uuid.New().String(),
		OrderID:      orderID,
		CustomerID:   customerID,
		Amount:       amount,
		Reason:       reason,
		Status:       models.RefundPending,
		RefundMethod: refundMethod,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateRefund(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ResolveRefund approves or rejects a pending request. Approval appends a
// completed refund transaction; rejection only flips the status.
func (s *settlementService) ResolveRefund(refundID, action, notes string) (bool, error) {
	if action != "approve" && action != "reject" {
		return false, &ValidationError{Msg: "action must be approve or reject"}
	}

	unlock := s.locks.Lock("refund:" + refundID)
	defer unlock()

	req, err := s.repo.GetRefund(refundID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, &NotFoundError{Resource: "refund request", ID: refundID}
		}
		return false, err
	}
	if req.Status != models.RefundPending {
		return false, &InvalidStateError{Op: "resolve refund", Current: string(req.Status)}
	}

	now := time.Now()
	req.Notes = notes
	req.ProcessedAt = &now

	if action == "reject" {
		req.Status = models.RefundRejected
		return true, s.repo.UpdateRefund(req)
	}

	req.Status = models.RefundProcessed
	if err := s.repo.UpdateRefund(req); err != nil {
		return false, err
	}

	tx := models.MoneyTransaction{
		ID:          uuid.New().String(),
		Type:        models.TxRefund,
		Amount:      req.Amount,
		Currency:    "USD",
		Reference:   req.OrderID,
		EntityID:    req.CustomerID,
		EntityType:  models.EntityCustomer,
		Status:      models.TxCompleted,
		CreatedAt:   now,
		ProcessedAt: &now,
	}
	if err := s.repo.CreateTransaction(&tx); err != nil {
		return false, err
	}

	s.invalidateMetrics()
	return true, nil
}

func (s *settlementService) SchedulePayout(entityID string, entityType models.EntityType, entityName, frequency string, minimumAmount float64) (*models.PayoutSchedule, error) {
	if strings.TrimSpace(entityID) == "" {
		return nil, &ValidationError{Msg: "entity id is required"}
	}

	interval := payoutInterval(frequency)
	p := &models.PayoutSchedule{
		EntityID:      entityID,
		EntityType:    entityType,
		EntityName:    entityName,
		Frequency:     frequency,
		NextPayout:    time.Now().Add(interval),
		MinimumAmount: minimumAmount,
		Status:        models.PayoutActive,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.repo.CreatePayout(p); err != nil {
		return nil, err
	}
	return p, nil
}

func payoutInterval(frequency string) time.Duration {
	switch frequency {
	case "monthly":
		return 30 * 24 * time.Hour
	case "biweekly":
		return 14 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

func (s *settlementService) SetPayoutStatus(payoutID uint, status models.PayoutStatus) error {
	p, err := s.repo.GetPayout(payoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "payout schedule", ID: fmt.Sprintf("%d", payoutID)}
		}
		return err
	}
	if p.Status == models.PayoutCancelled {
		return &InvalidStateError{Op: "set payout status", Current: string(p.Status)}
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return s.repo.UpdatePayout(p)
}

func (s *settlementService) DuePayouts(asOf time.Time) ([]models.PayoutSchedule, error) {
	return s.repo.GetDuePayouts(asOf)
}

// ComputeMetrics aggregates the ledger over a window. Net revenue is what
// the platform actually earned (collected commission minus doctor payouts),
// never gross transaction volume.
func (s *settlementService) ComputeMetrics(from, to time.Time) (*models.TransactionMetrics, error) {
	cacheKey := fmt.Sprintf("%d-%d", from.Unix(), to.Unix())
	if s.cache != nil {
		if cached, err := s.cache.GetMetrics(cacheKey); err == nil {
			return cached, nil
		}
	}

	txs, err := s.repo.GetTransactions(from, to)
	if err != nil {
		return nil, err
	}

	m := &models.TransactionMetrics{From: from, To: to, TransactionCount: len(txs)}
	for _, tx := range txs {
		switch tx.Type {
		case models.TxOrder:
			m.GrossVolume += tx.Amount
		case models.TxCommission:
			if tx.Status == models.TxCompleted && tx.SubType == "collection" {
				switch tx.EntityType {
				case models.EntityPharmacy:
					m.PharmacyCommissionCollected += tx.Amount
				case models.EntityVendor:
					m.VendorCommissionCollected += tx.Amount
				}
			} else if tx.Status == models.TxPending {
				m.PendingCommission += tx.Amount
			}
		case models.TxPayout:
			if tx.EntityType == models.EntityDoctor && tx.Status == models.TxCompleted {
				m.DoctorCommissionPaid += tx.Amount
			}
		case models.TxRefund:
			if tx.Status == models.TxCompleted {
				m.RefundsProcessed += tx.Amount
			}
		}
	}
	m.NetRevenue = m.PharmacyCommissionCollected + m.VendorCommissionCollected - m.DoctorCommissionPaid

	if s.cache != nil {
		_ = s.cache.SetMetrics(cacheKey, m, metricsCacheTTL)
	}
	return m, nil
}

func (s *settlementService) GetCommission(entityID string, entityType models.EntityType) (*models.EntityCommission, error) {
	c, err := s.repo.GetCommission(entityID, entityType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "commission record", ID: entityID}
		}
		return nil, err
	}
	return c, nil
}

func (s *settlementService) ListCommissions(entityType models.EntityType) ([]models.EntityCommission, error) {
	return s.repo.GetCommissions(entityType)
}

func (s *settlementService) ListTransactions(from, to time.Time) ([]models.MoneyTransaction, error) {
	return s.repo.GetTransactions(from, to)
}

func (s *settlementService) invalidateMetrics() {
	if s.cache == nil {
		return
	}
	_ = s.cache.InvalidateMetrics()
}
