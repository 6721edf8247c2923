// Package catalog serves the product list, product pages and variant
// pricing from an in-memory seed. There is no product database behind it.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gadgetplan-api/models"
)

const AllCategories = "all"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidVariant  = errors.New("invalid product variant")
)

type Catalog struct {
	products   []models.Product
	categories []models.Category
	colors     []models.ColorOption
	storage    []models.StorageOption
	reviews    []models.Review
	related    []models.RelatedProduct
}

func New() *Catalog {
	return &Catalog{
		products:   seedProducts(),
		categories: seedCategories(),
		colors:     seedColors(),
		storage:    seedStorageOptions(),
		reviews:    seedReviews(),
		related:    seedRelated(),
	}
}

func (c *Catalog) Categories() []models.Category {
	return append([]models.Category(nil), c.categories...)
}

// List applies the search term and facets. Search matches name or
// description, ignoring case.
func (c *Catalog) List(filter models.ProductFilter) models.ProductListResponse {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	categoryID, hasCategory := parseCategory(filter.Category)

	result := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if hasCategory && p.CategoryID != categoryID {
			continue
		}
		if filter.Color != "" && !c.offersColor(p, filter.Color) {
			continue
		}
		if filter.Storage != "" && !c.offersStorage(p, filter.Storage) {
			continue
		}
		result = append(result, p)
	}

	return models.ProductListResponse{
		Products: result,
		Shown:    len(result),
		Total:    len(c.products),
	}
}

func (c *Catalog) Get(id int) (models.Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
}

func (c *Catalog) Detail(id int) (models.ProductDetail, error) {
	p, err := c.Get(id)
	if err != nil {
		return models.ProductDetail{}, err
	}

	detail := models.ProductDetail{
		Product:        p,
		Colors:         []models.ColorOption{},
		StorageOptions: []models.StorageOption{},
		Reviews:        c.reviews,
		Related:        make([]models.RelatedProduct, 0, len(c.related)),
	}
	if hasVariants(p) {
		detail.Colors = c.colors
		detail.StorageOptions = c.storage
	}
	for _, r := range c.related {
		if r.ID != p.ID {
			detail.Related = append(detail.Related, r)
		}
	}
	return detail, nil
}

// Price is the unit price of a variant: base price plus the storage
// modifier. Products without variants only accept an empty storage.
func (c *Catalog) Price(id int, storage string) (decimal.Decimal, error) {
	p, err := c.Get(id)
	if err != nil {
		return decimal.Zero, err
	}
	if storage == "" {
		return p.Price, nil
	}
	if !hasVariants(p) {
		return decimal.Zero, fmt.Errorf("storage %q on product %d: %w", storage, id, ErrInvalidVariant)
	}
	opt, ok := c.storageOption(storage)
	if !ok {
		return decimal.Zero, fmt.Errorf("storage %q: %w", storage, ErrInvalidVariant)
	}
	return p.Price.Add(opt.PriceModifier), nil
}

// ResolveLine builds a cart line from the catalog. The id is left for the
// caller to assign.
func (c *Catalog) ResolveLine(req models.AddToCartRequest) (models.CartItem, error) {
	p, err := c.Get(req.ProductID)
	if err != nil {
		return models.CartItem{}, err
	}
	if req.Color != "" && !c.offersColor(p, req.Color) {
		return models.CartItem{}, fmt.Errorf("color %q on product %d: %w", req.Color, p.ID, ErrInvalidVariant)
	}

	price, err := c.Price(p.ID, req.Storage)
	if err != nil {
		return models.CartItem{}, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var image string
	if len(p.ImageURLs) > 0 {
		image = p.ImageURLs[0]
	}

	return models.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     price,
		Quantity:  quantity,
		ImageURL:  image,
		Color:     req.Color,
		Storage:   req.Storage,
	}, nil
}

func (c *Catalog) offersColor(p models.Product, color string) bool {
	if !hasVariants(p) {
		return false
	}
	for _, opt := range c.colors {
		if opt.ID == color {
			return true
		}
	}
	return false
}

func (c *Catalog) offersStorage(p models.Product, storage string) bool {
	if !hasVariants(p) {
		return false
	}
	_, ok := c.storageOption(storage)
	return ok
}

func (c *Catalog) storageOption(id string) (models.StorageOption, bool) {
	for _, opt := range c.storage {
		if opt.ID == id {
			return opt, true
		}
	}
	return models.StorageOption{}, false
}

func hasVariants(p models.Product) bool {
	return p.CategoryID == iPhoneCategoryID
}

func parseCategory(category string) (int, bool) {
	if category == "" || category == AllCategories {
		return 0, false
	}
	id, err := strconv.Atoi(category)
	if err != nil {
		// unknown category ids match nothing
		return -1, true
	}
	return id, true
}
