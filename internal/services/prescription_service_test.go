package services

import (
	"errors"
	"testing"
	"time"

	"medimarket/internal/models"
	"medimarket/internal/repository"
)

var testActor = models.Actor{ID: "reader-1", Name: "Test Reader", Role: "pharmacy"}

func newTestPrescriptionService() (PrescriptionService, repository.PrescriptionRepository) {
	repo := repository.NewMemoryPrescriptionRepository()
	catalog := repository.NewMemoryCatalogRepository()
	svc := NewPrescriptionService(repo, catalog, NewMedicineInteractionService(), nil, nil)
	return svc, repo
}

func allChecksPassed() models.QualityChecks {
	return models.QualityChecks{
		PrescriptionClear:    true,
		DosageVerified:       true,
		InteractionsChecked:  true,
		PatientInfoConfirmed: true,
	}
}

func submitTestPrescription(t *testing.T, svc PrescriptionService) *models.Prescription {
	t.Helper()
	p, err := svc.Submit(
		models.PatientInfo{PatientName: "Jane Doe", CustomerName: "Jane Doe", CustomerPhone: "+15550001"},
		[]models.PrescriptionFile{{Name: "rx.jpg", Type: models.FileImage}},
		models.UrgencyNormal,
		testActor,
	)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return p
}

func TestSubmitCreatesPrescription(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)

	if p.ID == "" {
		t.Error("expected generated prescription ID")
	}
	if p.CurrentStatus != models.PrescriptionSubmitted {
		t.Errorf("expected status submitted, got %s", p.CurrentStatus)
	}
	if len(p.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(p.History))
	}
	if p.History[0].Status != models.PrescriptionSubmitted {
		t.Errorf("expected initial history entry status submitted, got %s", p.History[0].Status)
	}
}

func TestSubmitRequiresFiles(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	_, err := svc.Submit(models.PatientInfo{PatientName: "Jane Doe"}, nil, models.UrgencyNormal, testActor)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty files, got %v", err)
	}
}

func TestSubmitRejectsUnsupportedFileType(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	_, err := svc.Submit(
		models.PatientInfo{PatientName: "Jane Doe"},
		[]models.PrescriptionFile{{Name: "rx.exe", Type: "exe"}},
		models.UrgencyNormal,
		testActor,
	)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unsupported file type, got %v", err)
	}
}

func TestInvalidTransitionLeavesRecordUnchanged(t *testing.T) {
	svc, repo := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)

	_, err := svc.UpdateStatus(p.ID, models.PrescriptionApproved, testActor, "", allChecksPassed())
	var terr *InvalidTransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected InvalidTransitionError for submitted -> approved, got %v", err)
	}

	stored, err := repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.CurrentStatus != models.PrescriptionSubmitted {
		t.Errorf("status changed after failed transition: %s", stored.CurrentStatus)
	}
	if len(stored.History) != 1 {
		t.Errorf("history grew after failed transition: %d entries", len(stored.History))
	}
}

func TestFullLifecycleToDelivered(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)

	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("submitted -> reviewing failed: %v", err)
	}

	instructions := "Take twice daily"
	if _, err := svc.AddMedicine(p.ID, models.ProcessedMedicine{
		ProductName:  "Amoxicillin 500mg",
		Quantity:     2,
		Price:        25,
		Instructions: instructions,
		IsAvailable:  true,
	}, testActor); err != nil {
		t.Fatalf("AddMedicine failed: %v", err)
	}

	steps := []models.PrescriptionStatus{
		models.PrescriptionApproved,
		models.PrescriptionPreparing,
		models.PrescriptionReady,
		models.PrescriptionOutForDelivery,
		models.PrescriptionDelivered,
	}
	var last *models.Prescription
	var err error
	for _, st := range steps {
		last, err = svc.UpdateStatus(p.ID, st, testActor, "", allChecksPassed())
		if err != nil {
			t.Fatalf("transition to %s failed: %v", st, err)
		}
	}

	if last.CurrentStatus != models.PrescriptionDelivered {
		t.Errorf("expected delivered, got %s", last.CurrentStatus)
	}
	if last.TotalAmount != 50.0 {
		t.Errorf("expected total 50.0 (25 x 2), got %f", last.TotalAmount)
	}
	// submitted + reviewing + 5 steps
	if len(last.History) != 7 {
		t.Errorf("expected 7 history entries, got %d", len(last.History))
	}

	// Terminal: nothing moves out of delivered.
	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionCancelled, testActor, "", models.QualityChecks{}); err == nil {
		t.Error("expected transition out of delivered to fail")
	}
}

func TestApprovalGateBlocksWithoutMedicines(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)
	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("submitted -> reviewing failed: %v", err)
	}

	_, err := svc.UpdateStatus(p.ID, models.PrescriptionApproved, testActor, "", allChecksPassed())
	var gerr *QualityGateError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected QualityGateError when no medicines processed, got %v", err)
	}
}

func TestApprovalGateBlocksOnFailedChecks(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)
	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("submitted -> reviewing failed: %v", err)
	}
	if _, err := svc.AddMedicine(p.ID, models.ProcessedMedicine{
		ProductName: "Paracetamol 500mg", Quantity: 1, Price: 5, Instructions: "Once daily", IsAvailable: true,
	}, testActor); err != nil {
		t.Fatalf("AddMedicine failed: %v", err)
	}

	checks := allChecksPassed()
	checks.DosageVerified = false
	_, err := svc.UpdateStatus(p.ID, models.PrescriptionApproved, testActor, "", checks)
	var gerr *QualityGateError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected QualityGateError, got %v", err)
	}
	found := false
	for _, name := range gerr.Failing {
		if name == "dosage_verified" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected dosage_verified among failing checks, got %v", gerr.Failing)
	}
}

func TestApprovalGateBlocksOnMissingInstructions(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)
	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("submitted -> reviewing failed: %v", err)
	}
	if _, err := svc.AddMedicine(p.ID, models.ProcessedMedicine{
		ProductName: "Paracetamol 500mg", Quantity: 1, Price: 5, IsAvailable: true,
	}, testActor); err != nil {
		t.Fatalf("AddMedicine failed: %v", err)
	}

	_, err := svc.UpdateStatus(p.ID, models.PrescriptionApproved, testActor, "", allChecksPassed())
	var gerr *QualityGateError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected QualityGateError when a medicine has no instructions, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)
	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("submitted -> reviewing failed: %v", err)
	}

	_, err := svc.UpdateStatus(p.ID, models.PrescriptionRejected, testActor, "", models.QualityChecks{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for rejection without reason, got %v", err)
	}

	rejected, err := svc.UpdateStatus(p.ID, models.PrescriptionRejected, testActor, "image is illegible", models.QualityChecks{})
	if err != nil {
		t.Fatalf("rejection with reason failed: %v", err)
	}
	if rejected.RejectionReason != "image is illegible" {
		t.Errorf("expected rejection reason stored, got %q", rejected.RejectionReason)
	}
}

func TestHistoryTimestampsNeverDecrease(t *testing.T) {
	svc, repo := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)

	// Force a future timestamp onto the last entry; the next one must clamp.
	stored, _ := repo.GetByID(p.ID)
	stored.History[0].Timestamp = time.Now().Add(time.Hour)
	if err := repo.Update(stored); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{})
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	for i := 1; i < len(got.History); i++ {
		if got.History[i].Timestamp.Before(got.History[i-1].Timestamp) {
			t.Errorf("history entry %d is earlier than entry %d", i, i-1)
		}
	}
}

func TestAssignReaderOnlyFromSubmittedOrSuspended(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)

	if err := svc.AssignReader(p.ID, "reader-9", testActor); err != nil {
		t.Fatalf("AssignReader on submitted failed: %v", err)
	}
	got, _ := svc.GetByID(p.ID)
	if got.AssignedReaderID != "reader-9" {
		t.Errorf("expected reader-9 assigned, got %q", got.AssignedReaderID)
	}

	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	err := svc.AssignReader(p.ID, "reader-10", testActor)
	var serr *InvalidStateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected InvalidStateError assigning in reviewing, got %v", err)
	}
}

func TestMedicineEditingRequiresReviewingOrSuspended(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)

	_, err := svc.AddMedicine(p.ID, models.ProcessedMedicine{ProductName: "X", Quantity: 1}, testActor)
	var serr *InvalidStateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected InvalidStateError adding medicine while submitted, got %v", err)
	}
}

func TestUpdateAndRemoveMedicine(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	p := submitTestPrescription(t, svc)
	if _, err := svc.UpdateStatus(p.ID, models.PrescriptionReviewing, testActor, "", models.QualityChecks{}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if _, err := svc.AddMedicine(p.ID, models.ProcessedMedicine{
		ProductName: "Ibuprofen 200mg", Quantity: 1, Price: 8, Instructions: "After meals", IsAvailable: true,
	}, testActor); err != nil {
		t.Fatalf("AddMedicine failed: %v", err)
	}

	got, _ := svc.GetByID(p.ID)
	if len(got.Medicines) != 1 {
		t.Fatalf("expected 1 medicine, got %d", len(got.Medicines))
	}
	medID := got.Medicines[0].ID

	qty := 3
	if _, err := svc.UpdateMedicine(p.ID, medID, MedicinePatch{Quantity: &qty}, testActor); err != nil {
		t.Fatalf("UpdateMedicine failed: %v", err)
	}
	got, _ = svc.GetByID(p.ID)
	if got.Medicines[0].Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", got.Medicines[0].Quantity)
	}

	if err := svc.RemoveMedicine(p.ID, medID, testActor); err != nil {
		t.Fatalf("RemoveMedicine failed: %v", err)
	}
	got, _ = svc.GetByID(p.ID)
	if len(got.Medicines) != 0 {
		t.Errorf("expected no medicines after removal, got %d", len(got.Medicines))
	}

	if err := svc.RemoveMedicine(p.ID, medID, testActor); !errors.As(err, new(*NotFoundError)) {
		t.Errorf("expected NotFoundError removing missing medicine, got %v", err)
	}
}

func TestFilterAndSortByUrgency(t *testing.T) {
	svc, _ := newTestPrescriptionService()

	for _, u := range []models.Urgency{models.UrgencyRoutine, models.UrgencyUrgent, models.UrgencyNormal} {
		if _, err := svc.Submit(
			models.PatientInfo{PatientName: "Patient " + string(u)},
			[]models.PrescriptionFile{{Name: "rx.pdf", Type: models.FilePDF}},
			u,
			testActor,
		); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	list, err := svc.FilterAndSort(PrescriptionFilter{}, "urgency", "desc")
	if err != nil {
		t.Fatalf("FilterAndSort failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 prescriptions, got %d", len(list))
	}
	if list[0].Urgency != models.UrgencyUrgent || list[2].Urgency != models.UrgencyRoutine {
		t.Errorf("expected urgent first and routine last, got %s .. %s", list[0].Urgency, list[2].Urgency)
	}

	urgentOnly, err := svc.FilterAndSort(PrescriptionFilter{Urgency: models.UrgencyUrgent}, "created_at", "asc")
	if err != nil {
		t.Fatalf("FilterAndSort failed: %v", err)
	}
	if len(urgentOnly) != 1 {
		t.Errorf("expected 1 urgent prescription, got %d", len(urgentOnly))
	}
}

func TestGetByIDUnknownReturnsNotFound(t *testing.T) {
	svc, _ := newTestPrescriptionService()
	_, err := svc.GetByID("no-such-id")
	if !errors.As(err, new(*NotFoundError)) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
