package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
	"gadgetplan-api/services/catalog"
	"gadgetplan-api/utils"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// ListProducts answers GET /products?search=&category=&color=&storage=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := h.catalog.List(models.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Storage:  q.Get("storage"),
	})

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Products retrieved successfully",
		Data:    result,
	})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	detail, err := h.catalog.Detail(id)
	if err != nil {
		h.sendCatalogError(w, err, id)
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Product retrieved successfully",
		Data:    detail,
	})
}

// GetPrice answers GET /products/{id}/price?storage=
func (h *CatalogHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	storage := r.URL.Query().Get("storage")
	price, err := h.catalog.Price(id, storage)
	if err != nil {
		h.sendCatalogError(w, err, id)
		return
	}

	money := models.NewMoney(price)
	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Price calculated",
		Data: map[string]interface{}{
			"product_id": id,
			"storage":    storage,
			"price":      money.Amount,
			"currency":   money.CurrencyCode(),
			"formatted":  utils.FormatMoney(money),
		},
	})
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Categories retrieved successfully",
		Data:    h.catalog.Categories(),
	})
}

func (h *CatalogHandler) sendCatalogError(w http.ResponseWriter, err error, id int) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrInvalidVariant):
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product variant")
	default:
		log.Error().Err(err).Int("product_id", id).Msg("catalog lookup failed")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return id, true
}
