package notify

import (
	"context"
	"fmt"

	"github.com/cityclinic/desk-assistant/internal/appointments"
	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// Service emails the clinic operator when the desk assistant books an
// appointment. Confirmation is best-effort: callers log failures and move on.
type Service struct {
	email       EmailSender
	clinicEmail string
	logger      *logging.Logger
}

// NewService creates a notification service. A nil sender or empty operator
// address disables notifications.
func NewService(email EmailSender, clinicEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:       email,
		clinicEmail: clinicEmail,
		logger:      logger,
	}
}

// BookingConfirmed notifies the clinic operator of a new appointment.
func (s *Service) BookingConfirmed(ctx context.Context, appt appointments.Appointment) error {
	if s.email == nil || s.clinicEmail == "" {
		s.logger.Debug("notify: email not configured, skipping booking confirmation")
		return nil
	}

	msg := EmailMessage{
		To:      s.clinicEmail,
		Subject: fmt.Sprintf("New appointment: %s on %s at %s", appt.Name, appt.Date, appt.Time),
		Body: fmt.Sprintf(
			"The desk assistant booked a new appointment.\n\n"+
				"Patient: %s\nContact: %s\nDoctor: %s\nDate: %s\nTime: %s\n",
			appt.Name, appt.Contact, appt.Doctor, appt.Date, appt.Time),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}
