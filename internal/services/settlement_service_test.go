package services

import (
	"errors"
	"testing"
	"time"

	"medimarket/internal/models"
	"medimarket/internal/repository"
)

func newTestSettlementService() SettlementService {
	return NewSettlementService(repository.NewMemorySettlementRepository(), nil)
}

func TestRecordOrderSettlement(t *testing.T) {
	svc := newTestSettlementService()

	txs, err := svc.RecordOrderSettlement("pharmacy-1", models.EntityPharmacy, "City Care Pharmacy", 200, 0.10)
	if err != nil {
		t.Fatalf("RecordOrderSettlement failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected order + commission transaction, got %d", len(txs))
	}

	orderTx, commissionTx := txs[0], txs[1]
	if orderTx.Type != models.TxOrder || orderTx.Amount != 200 || orderTx.Status != models.TxPending {
		t.Errorf("order tx wrong: %+v", orderTx)
	}
	if commissionTx.Type != models.TxCommission || commissionTx.Amount != 20 || commissionTx.Status != models.TxPending {
		t.Errorf("commission tx wrong: %+v", commissionTx)
	}
	if commissionTx.Reference != orderTx.ID {
		t.Error("commission tx must reference the order tx")
	}

	c, err := svc.GetCommission("pharmacy-1", models.EntityPharmacy)
	if err != nil {
		t.Fatalf("GetCommission failed: %v", err)
	}
	if c.TotalSales != 200 || c.EntityRevenue != 180 || c.CommissionOwed != 20 || c.PendingAmount != 20 {
		t.Errorf("commission record wrong: %+v", c)
	}
	if c.OutstandingBalance != 20 {
		t.Errorf("expected outstanding 20, got %f", c.OutstandingBalance)
	}
}

func TestRecordOrderSettlementAccumulates(t *testing.T) {
	svc := newTestSettlementService()

	if _, err := svc.RecordOrderSettlement("vendor-1", models.EntityVendor, "MedSupply", 100, 0.08); err != nil {
		t.Fatalf("first settlement failed: %v", err)
	}
	if _, err := svc.RecordOrderSettlement("vendor-1", models.EntityVendor, "MedSupply", 50, 0.08); err != nil {
		t.Fatalf("second settlement failed: %v", err)
	}

	c, _ := svc.GetCommission("vendor-1", models.EntityVendor)
	if c.TotalSales != 150 || c.CommissionOwed != 12 || c.PendingAmount != 12 {
		t.Errorf("expected sales 150, owed 12, pending 12; got %+v", c)
	}
}

func TestRecordOrderSettlementValidation(t *testing.T) {
	svc := newTestSettlementService()

	cases := []struct {
		entityID   string
		entityType models.EntityType
		amount     float64
		rate       float64
	}{
		{"", models.EntityPharmacy, 100, 0.1},
		{"doc-1", models.EntityDoctor, 100, 0.1},
		{"pharmacy-1", models.EntityPharmacy, 0, 0.1},
		{"pharmacy-1", models.EntityPharmacy, 100, 1.5},
		{"pharmacy-1", models.EntityPharmacy, 100, -0.1},
	}
	for i, c := range cases {
		_, err := svc.RecordOrderSettlement(c.entityID, c.entityType, "X", c.amount, c.rate)
		if !errors.As(err, new(*ValidationError)) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestCollectCommissionIsIdempotent(t *testing.T) {
	svc := newTestSettlementService()
	actor := models.Actor{ID: "admin-1", Name: "Admin", Role: "admin"}

	if _, err := svc.RecordOrderSettlement("pharmacy-1", models.EntityPharmacy, "City Care", 200, 0.10); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	collected, err := svc.CollectCommission("pharmacy-1", models.EntityPharmacy, actor)
	if err != nil || !collected {
		t.Fatalf("expected first collection to succeed, got collected=%v err=%v", collected, err)
	}

	c, _ := svc.GetCommission("pharmacy-1", models.EntityPharmacy)
	if c.PendingAmount != 0 || c.TotalCommissionCollected != 20 || c.OutstandingBalance != 0 {
		t.Errorf("after collection: %+v", c)
	}
	if c.CollectionStatus != models.CollectionCompleted {
		t.Errorf("expected collection completed, got %s", c.CollectionStatus)
	}

	// Second sweep finds nothing pending and changes nothing.
	collected, err = svc.CollectCommission("pharmacy-1", models.EntityPharmacy, actor)
	if err != nil {
		t.Fatalf("second collection errored: %v", err)
	}
	if collected {
		t.Error("second collection must report nothing collected")
	}
	again, _ := svc.GetCommission("pharmacy-1", models.EntityPharmacy)
	if again.TotalCommissionCollected != 20 {
		t.Errorf("collected total moved on idempotent sweep: %f", again.TotalCommissionCollected)
	}

	// Unknown entity is also a quiet no-op.
	collected, err = svc.CollectCommission("nobody", models.EntityVendor, actor)
	if err != nil || collected {
		t.Errorf("expected quiet no-op for unknown entity, got collected=%v err=%v", collected, err)
	}
}

func TestRefundApproveAndReject(t *testing.T) {
	svc := newTestSettlementService()

	approve, err := svc.RequestRefund("order-1", "cust-1", 30, "damaged packaging", "wallet")
	if err != nil {
		t.Fatalf("RequestRefund failed: %v", err)
	}
	reject, err := svc.RequestRefund("order-2", "cust-2", 15, "changed mind", "card")
	if err != nil {
		t.Fatalf("RequestRefund failed: %v", err)
	}

	if _, err := svc.ResolveRefund(approve.ID, "approve", "verified with courier"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.ResolveRefund(reject.ID, "reject", "outside refund window"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// Approval creates exactly one completed refund transaction; rejection none.
	window := time.Hour
	txs, err := svc.ListTransactions(time.Now().Add(-window), time.Now().Add(window))
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	refunds := 0
	for _, tx := range txs {
		if tx.Type == models.TxRefund {
			refunds++
			if tx.Amount != 30 || tx.Status != models.TxCompleted {
				t.Errorf("refund tx wrong: %+v", tx)
			}
		}
	}
	if refunds != 1 {
		t.Errorf("expected exactly 1 refund transaction, got %d", refunds)
	}

	// A resolved request cannot be resolved again.
	if _, err := svc.ResolveRefund(approve.ID, "reject", ""); !errors.As(err, new(*InvalidStateError)) {
		t.Errorf("expected InvalidStateError re-resolving refund, got %v", err)
	}

	if _, err := svc.ResolveRefund(approve.ID, "escalate", ""); !errors.As(err, new(*ValidationError)) {
		t.Errorf("expected ValidationError for unknown action, got %v", err)
	}
}

func TestComputeMetricsSeparatesGrossAndNet(t *testing.T) {
	svc := newTestSettlementService()
	actor := models.Actor{ID: "admin-1", Name: "Admin", Role: "admin"}

	if _, err := svc.RecordOrderSettlement("pharmacy-1", models.EntityPharmacy, "City Care", 200, 0.10); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}
	if _, err := svc.RecordOrderSettlement("vendor-1", models.EntityVendor, "MedSupply", 100, 0.08); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}
	if _, err := svc.CollectCommission("pharmacy-1", models.EntityPharmacy, actor); err != nil {
		t.Fatalf("collection failed: %v", err)
	}
	if _, err := svc.RecordDoctorCommission("doc-1", "Dr. Lee", 5, "rx-99"); err != nil {
		t.Fatalf("doctor commission failed: %v", err)
	}

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	m, err := svc.ComputeMetrics(from, to)
	if err != nil {
		t.Fatalf("ComputeMetrics failed: %v", err)
	}

	if m.GrossVolume != 300 {
		t.Errorf("expected gross 300, got %f", m.GrossVolume)
	}
	if m.PharmacyCommissionCollected != 20 {
		t.Errorf("expected pharmacy collected 20, got %f", m.PharmacyCommissionCollected)
	}
	if m.VendorCommissionCollected != 0 {
		t.Errorf("vendor commission not collected yet, got %f", m.VendorCommissionCollected)
	}
	if m.PendingCommission != 8 {
		t.Errorf("expected pending 8 (vendor accrual), got %f", m.PendingCommission)
	}
	if m.DoctorCommissionPaid != 5 {
		t.Errorf("expected doctor paid 5, got %f", m.DoctorCommissionPaid)
	}
	// Net is collected commission minus doctor payouts, never gross volume.
	if m.NetRevenue != 15 {
		t.Errorf("expected net 15, got %f", m.NetRevenue)
	}
	if m.NetRevenue == m.GrossVolume {
		t.Error("net revenue must not equal gross volume")
	}
}

func TestPayoutAccruesRevenueAndBecomesDue(t *testing.T) {
	svc := newTestSettlementService()

	p, err := svc.SchedulePayout("pharmacy-1", models.EntityPharmacy, "City Care", "weekly", 100)
	if err != nil {
		t.Fatalf("SchedulePayout failed: %v", err)
	}

	// 200 at 10% leaves 180 of entity revenue pending on the schedule.
	if _, err := svc.RecordOrderSettlement("pharmacy-1", models.EntityPharmacy, "City Care", 200, 0.10); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	due, err := svc.DuePayouts(time.Now().Add(8 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("DuePayouts failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due payout, got %d", len(due))
	}
	if due[0].ID != p.ID || due[0].PendingAmount != 180 {
		t.Errorf("due payout wrong: %+v", due[0])
	}

	// Below the minimum it stays off the due list even past its date.
	strict, err := svc.SchedulePayout("vendor-1", models.EntityVendor, "MedSupply", "weekly", 500)
	if err != nil {
		t.Fatalf("SchedulePayout failed: %v", err)
	}
	if _, err := svc.RecordOrderSettlement("vendor-1", models.EntityVendor, "MedSupply", 100, 0.08); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}
	due, err = svc.DuePayouts(time.Now().Add(8 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("DuePayouts failed: %v", err)
	}
	for _, d := range due {
		if d.ID == strict.ID {
			t.Error("payout below its minimum must not be due")
		}
	}
}

func TestPayoutScheduling(t *testing.T) {
	svc := newTestSettlementService()

	p, err := svc.SchedulePayout("pharmacy-1", models.EntityPharmacy, "City Care", "biweekly", 50)
	if err != nil {
		t.Fatalf("SchedulePayout failed: %v", err)
	}
	if p.Status != models.PayoutActive {
		t.Errorf("expected active schedule, got %s", p.Status)
	}
	wantNext := time.Now().Add(14 * 24 * time.Hour)
	if p.NextPayout.Before(wantNext.Add(-time.Minute)) || p.NextPayout.After(wantNext.Add(time.Minute)) {
		t.Errorf("expected next payout in ~14 days, got %v", p.NextPayout)
	}

	// Not due yet.
	due, err := svc.DuePayouts(time.Now())
	if err != nil {
		t.Fatalf("DuePayouts failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected no due payouts, got %d", len(due))
	}

	if err := svc.SetPayoutStatus(p.ID, models.PayoutPaused); err != nil {
		t.Fatalf("SetPayoutStatus failed: %v", err)
	}
	if err := svc.SetPayoutStatus(p.ID, models.PayoutCancelled); err != nil {
		t.Fatalf("SetPayoutStatus failed: %v", err)
	}
	// Cancelled is terminal.
	if err := svc.SetPayoutStatus(p.ID, models.PayoutActive); !errors.As(err, new(*InvalidStateError)) {
		t.Errorf("expected InvalidStateError reactivating cancelled schedule, got %v", err)
	}
}
