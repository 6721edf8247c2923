package models

import "github.com/shopspring/decimal"

type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURLs     []string        `json:"image_urls"`
	CategoryID    int             `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	Rating        float64         `json:"rating"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ColorOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type StorageOption struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

type Review struct {
	ID       int    `json:"id"`
	UserName string `json:"user_name"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

type RelatedProduct struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Rating float64         `json:"rating"`
}

type ProductFilter struct {
	Search   string
	Category string
	Color    string
	Storage  string
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Shown    int       `json:"shown"`
	Total    int       `json:"total"`
}

type ProductDetail struct {
	Product        Product          `json:"product"`
	Colors         []ColorOption    `json:"colors"`
	StorageOptions []StorageOption  `json:"storage_options"`
	Reviews        []Review         `json:"reviews"`
	Related        []RelatedProduct `json:"related"`
}
