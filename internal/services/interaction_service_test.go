package services

import "testing"

func TestCheckInteractionsKnownPair(t *testing.T) {
	svc := NewMedicineInteractionService()

	warnings := svc.CheckInteractions([]MedicineProfile{
		{ID: "1", Name: "Warfex 5mg", ActiveIngredient: "warfarin"},
		{ID: "2", Name: "Aspirin Protect 100", ActiveIngredient: "aspirin"},
	})
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Severity != "severe" {
		t.Errorf("warfarin + aspirin should be severe, got %s", warnings[0].Severity)
	}
}

func TestCheckInteractionsFallsBackToProductName(t *testing.T) {
	svc := NewMedicineInteractionService()

	// No catalog ingredient available: the product name carries the match.
	warnings := svc.CheckInteractions([]MedicineProfile{
		{ID: "1", Name: "Ibuprofen 400mg"},
		{ID: "2", Name: "Lisinopril 10mg"},
	})
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning via name fallback, got %d", len(warnings))
	}
}

func TestCheckInteractionsCleanPair(t *testing.T) {
	svc := NewMedicineInteractionService()

	warnings := svc.CheckInteractions([]MedicineProfile{
		{ID: "1", Name: "Paracetamol 500mg", ActiveIngredient: "paracetamol"},
		{ID: "2", Name: "Vitamin C 500mg", ActiveIngredient: "ascorbic acid"},
	})
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	if got := svc.CheckInteractions([]MedicineProfile{{ID: "1", Name: "Aspirin"}}); got != nil {
		t.Errorf("a single medicine cannot interact, got %v", got)
	}
}
