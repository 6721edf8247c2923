// Package booking backs the ServiceGo repair booking form. Availability is
// simulated and bookings are not stored; a confirmation job is queued.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
	"gadgetplan-api/queue"
	"gadgetplan-api/utils"
)

const DefaultAvailabilityDelay = 600 * time.Millisecond

var (
	ErrIncomplete         = errors.New("booking request incomplete")
	ErrUnknownDevice      = errors.New("unknown device")
	ErrModelMismatch      = errors.New("device model does not match device type")
	ErrServiceNotFound    = errors.New("service type not found")
	ErrTechnicianNotFound = errors.New("technician not found")
	ErrInvalidSlot        = errors.New("invalid time slot")
	ErrInvalidDate        = errors.New("invalid date")
)

type JobQueue interface {
	Enqueue(ctx context.Context, jobType queue.JobType, payload interface{}) error
}

type Service struct {
	options models.BookingOptions
	delay   time.Duration
	jobs    JobQueue
}

// NewService builds the booking service. jobs may be nil, in which case
// confirmations are only logged.
func NewService(delay time.Duration, jobs JobQueue) *Service {
	if delay < 0 {
		delay = 0
	}
	return &Service{
		options: defaultOptions(),
		delay:   delay,
		jobs:    jobs,
	}
}

func (s *Service) Options() models.BookingOptions {
	return s.options
}

func (s *Service) Estimate(serviceType string) (models.ServiceType, error) {
	for _, st := range s.options.ServiceTypes {
		if st.ID == serviceType {
			return st, nil
		}
	}
	return models.ServiceType{}, fmt.Errorf("%q: %w", serviceType, ErrServiceNotFound)
}

// CurrentStep is the first form step that is still missing input.
func CurrentStep(req models.BookingRequest) models.BookingStep {
	switch {
	case req.DeviceType == "" || req.DeviceModel == "":
		return models.BookingStepDevice
	case req.ServiceType == "":
		return models.BookingStepService
	case req.Date == "" || req.Time == "":
		return models.BookingStepSchedule
	default:
		return models.BookingStepTechnician
	}
}

func (s *Service) Validate(req models.BookingRequest) error {
	req = normalize(req)

	if req.DeviceType == "" || req.DeviceModel == "" || req.ServiceType == "" ||
		req.Date == "" || req.Time == "" || req.TechnicianID == "" {
		return ErrIncomplete
	}

	if !s.knownDevice(req.DeviceType) {
		return fmt.Errorf("%q: %w", req.DeviceType, ErrUnknownDevice)
	}
	if req.DeviceType != OtherDevice && !s.modelBelongs(req.DeviceType, req.DeviceModel) {
		return fmt.Errorf("%q is not a %s: %w", req.DeviceModel, req.DeviceType, ErrModelMismatch)
	}
	if _, err := s.Estimate(req.ServiceType); err != nil {
		return err
	}
	if !s.knownSlot(req.Time) {
		return fmt.Errorf("%q: %w", req.Time, ErrInvalidSlot)
	}
	if _, err := s.technician(req.TechnicianID); err != nil {
		return err
	}
	if !utils.ValidateDate(req.Date) {
		return fmt.Errorf("%q: %w", req.Date, ErrInvalidDate)
	}
	return nil
}

// CheckAvailability validates the request and simulates the lookup. Every
// valid slot is reported as available.
func (s *Service) CheckAvailability(ctx context.Context, req models.BookingRequest) (models.AvailabilityResult, error) {
	if err := s.Validate(req); err != nil {
		return models.AvailabilityResult{}, err
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return models.AvailabilityResult{}, ctx.Err()
	case <-timer.C:
	}

	return models.AvailabilityResult{
		Available: true,
		Message:   "Slot tersedia. Anda bisa melanjutkan pemesanan.",
	}, nil
}

// Submit validates the request, assigns a booking reference and queues the
// confirmation. contactEmail may be empty for anonymous visitors.
func (s *Service) Submit(ctx context.Context, req models.BookingRequest, contactEmail string) (models.BookingConfirmation, error) {
	req = normalize(req)
	if err := s.Validate(req); err != nil {
		return models.BookingConfirmation{}, err
	}

	service, _ := s.Estimate(req.ServiceType)
	tech, _ := s.technician(req.TechnicianID)

	confirmation := models.BookingConfirmation{
		BookingID:    uuid.NewString(),
		Request:      req,
		ServiceName:  service.Name,
		Technician:   tech.Name,
		Estimate:     service.PriceRange,
		ContactEmail: contactEmail,
	}

	log.Info().
		Str("booking_id", confirmation.BookingID).
		Str("device_model", req.DeviceModel).
		Str("service_type", req.ServiceType).
		Str("date", req.Date).
		Str("time", req.Time).
		Str("technician_id", req.TechnicianID).
		Msg("service booking submitted")

	if s.jobs != nil {
		if err := s.jobs.Enqueue(ctx, queue.JobTypeBookingConfirmation, confirmation); err != nil {
			return models.BookingConfirmation{}, fmt.Errorf("queue booking confirmation: %w", err)
		}
	}

	return confirmation, nil
}

func (s *Service) knownDevice(id string) bool {
	for _, d := range s.options.DeviceTypes {
		if d.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) modelBelongs(deviceType, model string) bool {
	for _, m := range s.options.DeviceModels[deviceType] {
		if m.ID == model {
			return true
		}
	}
	return false
}

func (s *Service) knownSlot(slot string) bool {
	for _, t := range s.options.TimeSlots {
		if t == slot {
			return true
		}
	}
	return false
}

func (s *Service) technician(id string) (models.Technician, error) {
	for _, t := range s.options.Technicians {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Technician{}, fmt.Errorf("%q: %w", id, ErrTechnicianNotFound)
}

func normalize(req models.BookingRequest) models.BookingRequest {
	req.DeviceType = strings.TrimSpace(req.DeviceType)
	req.DeviceModel = strings.TrimSpace(req.DeviceModel)
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.TechnicianID = strings.TrimSpace(req.TechnicianID)
	return req
}
