package services

import "medimarket/internal/models"

// allowedTransitions is the single source of truth for the prescription
// lifecycle. Any pair not listed here is rejected; terminal statuses map
// to an empty set.
var allowedTransitions = map[models.PrescriptionStatus][]models.PrescriptionStatus{
	models.PrescriptionSubmitted:      {models.PrescriptionReviewing, models.PrescriptionCancelled},
	models.PrescriptionReviewing:      {models.PrescriptionApproved, models.PrescriptionRejected, models.PrescriptionSuspended, models.PrescriptionCancelled},
	models.PrescriptionSuspended:      {models.PrescriptionReviewing, models.PrescriptionCancelled},
	models.PrescriptionApproved:       {models.PrescriptionPreparing, models.PrescriptionCancelled},
	models.PrescriptionPreparing:      {models.PrescriptionReady, models.PrescriptionCancelled},
	models.PrescriptionReady:          {models.PrescriptionOutForDelivery, models.PrescriptionCancelled},
	models.PrescriptionOutForDelivery: {models.PrescriptionDelivered, models.PrescriptionCancelled},
	models.PrescriptionDelivered:      {},
	models.PrescriptionCancelled:      {},
	models.PrescriptionRejected:       {},
}

// CanTransition reports whether from -> to is an allowed lifecycle step.
// Self transitions are not allowed.
func CanTransition(from, to models.PrescriptionStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
