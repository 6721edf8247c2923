package models

import "github.com/shopspring/decimal"

type DeviceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeviceModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type ServiceType struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	PriceRange PriceRange `json:"price_range"`
}

type Technician struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Expertise []string `json:"expertise"`
	Rating    float64  `json:"rating"`
}

type BookingOptions struct {
	DeviceTypes  []DeviceType             `json:"device_types"`
	DeviceModels map[string][]DeviceModel `json:"device_models"`
	ServiceTypes []ServiceType            `json:"service_types"`
	Technicians  []Technician             `json:"technicians"`
	TimeSlots    []string                 `json:"time_slots"`
}

type BookingRequest struct {
	DeviceType   string `json:"device_type"`
	DeviceModel  string `json:"device_model"`
	ServiceType  string `json:"service_type"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	TechnicianID string `json:"technician_id"`
}

type BookingStep int

const (
	BookingStepDevice BookingStep = iota + 1
	BookingStepService
	BookingStepSchedule
	BookingStepTechnician
)

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type BookingConfirmation struct {
	BookingID    string         `json:"booking_id"`
	Request      BookingRequest `json:"request"`
	ServiceName  string         `json:"service_name"`
	Technician   string         `json:"technician"`
	Estimate     PriceRange     `json:"estimate"`
	ContactEmail string         `json:"contact_email,omitempty"`
}
