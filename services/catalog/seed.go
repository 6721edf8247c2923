package catalog

import (
	"github.com/shopspring/decimal"

	"gadgetplan-api/models"
)

const iPhoneCategoryID = 1

func rp(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount)
}

func seedProducts() []models.Product {
	return []models.Product{
		{
			ID:            1,
			Name:          "iPhone 15 Pro Max",
			Description:   "iPhone terbaru dengan chip A17 Pro dan desain titanium premium",
			Price:         rp(20999000),
			StockQuantity: 15,
			ImageURLs: []string{
				"https://placehold.co/400x400?text=iPhone+15+Pro+Front",
				"https://placehold.co/400x400?text=iPhone+15+Pro+Back",
			},
			CategoryID:   1,
			CategoryName: "iPhone",
			Rating:       4.9,
		},
		{
			ID:            2,
			Name:          "iPhone 14",
			Description:   "Performa bertenaga dengan sistem kamera canggih",
			Price:         rp(12999000),
			StockQuantity: 25,
			ImageURLs:     []string{"https://placehold.co/300x300?text=iPhone+14"},
			CategoryID:    1,
			CategoryName:  "iPhone",
			Rating:        4.7,
		},
		{
			ID:            3,
			Name:          "AirPods Pro",
			Description:   "Peredam bising aktif dengan audio adaptif untuk pengalaman mendalam",
			Price:         rp(3299000),
			StockQuantity: 30,
			ImageURLs:     []string{"https://placehold.co/300x300?text=AirPods+Pro"},
			CategoryID:    2,
			CategoryName:  "Aksesoris",
			Rating:        4.8,
		},
		{
			ID:            4,
			Name:          "Pengisi Daya Nirkabel",
			Description:   "Pengisian cepat nirkabel, kompatibel dengan semua perangkat berstandar Qi",
			Price:         rp(499000),
			StockQuantity: 50,
			ImageURLs:     []string{"https://placehold.co/300x300?text=Wireless+Charger"},
			CategoryID:    2,
			CategoryName:  "Aksesoris",
			Rating:        4.5,
		},
		{
			ID:            5,
			Name:          "Casing Silikon Premium",
			Description:   "Casing pelindung dengan perlindungan jatuh dan nuansa premium",
			Price:         rp(299000),
			StockQuantity: 100,
			ImageURLs:     []string{"https://placehold.co/300x300?text=Casing"},
			CategoryID:    3,
			CategoryName:  "Aksesoris",
			Rating:        4.3,
		},
		{
			ID:            6,
			Name:          "iPhone 13",
			Description:   "Performa andal dengan sistem kamera ganda",
			Price:         rp(8999000),
			StockQuantity: 8,
			ImageURLs:     []string{"https://placehold.co/300x300?text=iPhone+13"},
			CategoryID:    1,
			CategoryName:  "iPhone",
			Rating:        4.6,
		},
	}
}

func seedCategories() []models.Category {
	return []models.Category{
		{ID: AllCategories, Name: "Semua Kategori"},
		{ID: "1", Name: "iPhone"},
		{ID: "2", Name: "Aksesoris"},
	}
}

func seedColors() []models.ColorOption {
	return []models.ColorOption{
		{ID: "black", Name: "Black", Value: "#000000"},
		{ID: "white", Name: "White", Value: "#FFFFFF"},
		{ID: "blue", Name: "Blue", Value: "#007AFF"},
		{ID: "green", Name: "Green", Value: "#34C759"},
		{ID: "pink", Name: "Pink", Value: "#FF2D55"},
	}
}

func seedStorageOptions() []models.StorageOption {
	return []models.StorageOption{
		{ID: "128gb", Name: "128GB", PriceModifier: rp(0)},
		{ID: "256gb", Name: "256GB", PriceModifier: rp(2000000)},
		{ID: "512gb", Name: "512GB", PriceModifier: rp(4000000)},
		{ID: "1tb", Name: "1TB", PriceModifier: rp(6000000)},
	}
}

func seedReviews() []models.Review {
	return []models.Review{
		{ID: 1, UserName: "Budi Santoso", Comment: "Kualitas kamera luar biasa! Baterai tahan lama dan desainnya sangat premium.", Date: "2023-10-15"},
		{ID: 2, UserName: "Siti Nurhaliza", Comment: "Performa sangat cepat dan layar OLED-nya memukau. Harga cukup mahal tapi sebanding dengan kualitasnya.", Date: "2023-10-10"},
		{ID: 3, UserName: "Ahmad Fauzi", Comment: "Saya sangat puas dengan iPhone 15 Pro Max ini. Chip A17 Pro nya benar-benar powerful!", Date: "2023-10-05"},
	}
}

func seedRelated() []models.RelatedProduct {
	return []models.RelatedProduct{
		{ID: 2, Name: "iPhone 14", Price: rp(12999000), Image: "https://placehold.co/400x400?text=iPhone+14", Rating: 4.7},
		{ID: 6, Name: "iPhone 13", Price: rp(8999000), Image: "https://placehold.co/400x400?text=iPhone+13", Rating: 4.6},
		{ID: 3, Name: "AirPods Pro", Price: rp(3299000), Image: "https://placehold.co/400x400?text=AirPods+Pro", Rating: 4.8},
		{ID: 5, Name: "Premium Silicone Case", Price: rp(299000), Image: "https://placehold.co/400x400?text=Casing", Rating: 4.3},
	}
}
