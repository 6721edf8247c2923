package booking

import (
	"github.com/shopspring/decimal"

	"gadgetplan-api/models"
)

// OtherDevice has no model list; its model is free text.
const OtherDevice = "other"

func priceRange(min, max int64) models.PriceRange {
	return models.PriceRange{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

func defaultOptions() models.BookingOptions {
	return models.BookingOptions{
		DeviceTypes: []models.DeviceType{
			{ID: "iphone", Name: "iPhone"},
			{ID: "ipad", Name: "iPad"},
			{ID: "macbook", Name: "MacBook"},
			{ID: OtherDevice, Name: "Other"},
		},
		DeviceModels: map[string][]models.DeviceModel{
			"iphone": {
				{ID: "iphone15", Name: "iPhone 15"},
				{ID: "iphone15pro", Name: "iPhone 15 Pro"},
				{ID: "iphone14", Name: "iPhone 14"},
				{ID: "iphone13", Name: "iPhone 13"},
				{ID: "iphone12", Name: "iPhone 12"},
				{ID: "iphone11", Name: "iPhone 11"},
				{ID: "iphonese", Name: "iPhone SE"},
			},
			"ipad": {
				{ID: "ipadpro", Name: "iPad Pro"},
				{ID: "ipadair", Name: "iPad Air"},
				{ID: "ipadmini", Name: "iPad Mini"},
				{ID: "ipad10", Name: "iPad 10th Gen"},
			},
			"macbook": {
				{ID: "macbookair", Name: "MacBook Air"},
				{ID: "macbookpro", Name: "MacBook Pro"},
				{ID: "macbookpro14", Name: `MacBook Pro 14"`},
				{ID: "macbookpro16", Name: `MacBook Pro 16"`},
			},
		},
		ServiceTypes: []models.ServiceType{
			{ID: "screen", Name: "Screen Replacement", PriceRange: priceRange(300000, 1500000)},
			{ID: "battery", Name: "Battery Replacement", PriceRange: priceRange(200000, 700000)},
			{ID: "charging", Name: "Charging Port Repair", PriceRange: priceRange(150000, 400000)},
			{ID: "water", Name: "Water Damage Repair", PriceRange: priceRange(500000, 2000000)},
			{ID: "software", Name: "Software Issues", PriceRange: priceRange(250000, 800000)},
			{ID: "camera", Name: "Camera Repair", PriceRange: priceRange(400000, 1200000)},
			{ID: "audio", Name: "Audio Issues", PriceRange: priceRange(200000, 600000)},
		},
		Technicians: []models.Technician{
			{ID: "tech1", Name: "Ahmad Prasetyo", Expertise: []string{"iPhone", "iPad"}, Rating: 4.9},
			{ID: "tech2", Name: "Budi Santoso", Expertise: []string{"MacBook", "iPhone"}, Rating: 4.8},
			{ID: "tech3", Name: "Citra Dewi", Expertise: []string{"iPhone"}, Rating: 4.7},
			{ID: "tech4", Name: "Dian Kusuma", Expertise: []string{"iPad", "MacBook"}, Rating: 4.9},
		},
		TimeSlots: []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"},
	}
}
