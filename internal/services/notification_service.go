package services

import (
	"fmt"
	"log"

	"medimarket/internal/models"
	"medimarket/pkg/notify"
)

// NotificationService informs customers about state changes. Delivery is
// best-effort: failures are logged, never returned to the domain caller.
type NotificationService interface {
	NotifyPrescriptionStatus(p *models.Prescription)
	NotifyOrderModification(o *models.SuspendedOrder)
	NotifyOrderResolved(o *models.SuspendedOrder)
}

type notificationService struct {
	client *notify.Client
}

func NewNotificationService(client *notify.Client) NotificationService {
	return &notificationService{client: client}
}

func (s *notificationService) NotifyPrescriptionStatus(p *models.Prescription) {
	if s.client == nil || p.CustomerPhone == "" {
		return
	}

	var message string
	switch p.CurrentStatus {
	case models.PrescriptionApproved:
		message = fmt.Sprintf("Your prescription for %s has been approved. Total: %.2f", p.PatientName, p.TotalAmount)
	case models.PrescriptionRejected:
		message = fmt.Sprintf("Your prescription for %s could not be approved: %s", p.PatientName, p.RejectionReason)
	case models.PrescriptionOutForDelivery:
		message = fmt.Sprintf("Your order for %s is out for delivery", p.PatientName)
	case models.PrescriptionDelivered:
		message = fmt.Sprintf("Your order for %s has been delivered. Get well soon!", p.PatientName)
	default:
		return
	}

	if err := s.client.Send(p.CustomerPhone, message); err != nil {
		log.Printf("Failed to notify customer %s: %v", p.CustomerPhone, err)
	}
}

func (s *notificationService) NotifyOrderModification(o *models.SuspendedOrder) {
	if s.client == nil || o.CustomerPhone == "" {
		return
	}

	message := fmt.Sprintf(
		"The pharmacy proposed changes to order %s. New total: %.2f (was %.2f). Notes: %s",
		o.OrderNumber, o.TotalAmount, o.OriginalTotalAmount, o.ModificationNotes,
	)
	if err := s.client.Send(o.CustomerPhone, message); err != nil {
		log.Printf("Failed to notify customer %s: %v", o.CustomerPhone, err)
	}
}

func (s *notificationService) NotifyOrderResolved(o *models.SuspendedOrder) {
	if s.client == nil || o.CustomerPhone == "" {
		return
	}

	message := fmt.Sprintf("Order %s has been confirmed with the agreed changes. Total: %.2f", o.OrderNumber, o.TotalAmount)
	if err := s.client.Send(o.CustomerPhone, message); err != nil {
		log.Printf("Failed to notify customer %s: %v", o.CustomerPhone, err)
	}
}
