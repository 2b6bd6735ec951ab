package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/service"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httputil"
	"github.com/AlexandruMarc/Easy-Shops/pkg/pagination"
	"github.com/AlexandruMarc/Easy-Shops/pkg/validator"
)

// maxJSONBody caps product request bodies.
const maxJSONBody = 1 << 20

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// List handles GET /products/all. Optional filters: name, brand, category;
// page and per_page paginate.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Name:     strings.TrimSpace(q.Get("name")),
		Brand:    strings.TrimSpace(q.Get("brand")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	if page, ok := pagination.FromRequest(r); ok {
		filter.Limit = page.PerPage
		filter.Offset = page.Offset
	}

	dtos, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, "Get products failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, msgSuccess, dtos)
}

// Get handles GET /products/product/{productId}/product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	dto, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, "Get product failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, msgSuccess, dto)
}

// Add handles POST /products/add.
func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req domain.AddProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	dto, err := h.service.Add(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, "Add product failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, "Add product success!", dto)
}

// Update handles PUT /products/product/{productId}/update.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req domain.UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	dto, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, r, err, "Update product failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, "Update product success!", dto)
}

// Delete handles DELETE /products/product/{productId}/delete.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, "Delete product failed!", h.logger)
		return
	}
	httputil.WriteSuccess(w, "Delete product success!", nil)
}
