package services

import (
	"testing"

	"medimarket/internal/models"
)

func TestCanTransitionAllowedPaths(t *testing.T) {
	allowed := [][2]models.PrescriptionStatus{
		{models.PrescriptionSubmitted, models.PrescriptionReviewing},
		{models.PrescriptionReviewing, models.PrescriptionApproved},
		{models.PrescriptionReviewing, models.PrescriptionRejected},
		{models.PrescriptionReviewing, models.PrescriptionSuspended},
		{models.PrescriptionSuspended, models.PrescriptionReviewing},
		{models.PrescriptionApproved, models.PrescriptionPreparing},
		{models.PrescriptionPreparing, models.PrescriptionReady},
		{models.PrescriptionReady, models.PrescriptionOutForDelivery},
		{models.PrescriptionOutForDelivery, models.PrescriptionDelivered},
		{models.PrescriptionSubmitted, models.PrescriptionCancelled},
		{models.PrescriptionReady, models.PrescriptionCancelled},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}
}

func TestCanTransitionRejectsEverythingElse(t *testing.T) {
	statuses := []models.PrescriptionStatus{
		models.PrescriptionSubmitted,
		models.PrescriptionReviewing,
		models.PrescriptionApproved,
		models.PrescriptionRejected,
		models.PrescriptionSuspended,
		models.PrescriptionPreparing,
		models.PrescriptionReady,
		models.PrescriptionOutForDelivery,
		models.PrescriptionDelivered,
		models.PrescriptionCancelled,
	}

	inTable := func(from, to models.PrescriptionStatus) bool {
		for _, s := range allowedTransitions[from] {
			if s == to {
				return true
			}
		}
		return false
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransition(from, to)
			if got != inTable(from, to) {
				t.Errorf("CanTransition(%s, %s) = %v, table says %v", from, to, got, inTable(from, to))
			}
		}
	}

	// Terminal statuses allow nothing, self transitions included.
	for _, terminal := range []models.PrescriptionStatus{models.PrescriptionDelivered, models.PrescriptionCancelled, models.PrescriptionRejected} {
		for _, to := range statuses {
			if CanTransition(terminal, to) {
				t.Errorf("expected no transition out of terminal %s, got %s allowed", terminal, to)
			}
		}
	}
}

func TestCanTransitionShortcutsBlocked(t *testing.T) {
	if CanTransition(models.PrescriptionSubmitted, models.PrescriptionApproved) {
		t.Error("submitted -> approved must go through reviewing")
	}
	if CanTransition(models.PrescriptionApproved, models.PrescriptionDelivered) {
		t.Error("approved -> delivered must go through the fulfillment steps")
	}
	if CanTransition(models.PrescriptionReviewing, models.PrescriptionReviewing) {
		t.Error("self transitions are not allowed")
	}
}
