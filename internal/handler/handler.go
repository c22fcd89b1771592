// Package handler содержит HTTP-обработчики API POS-системы Bear Phone.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/bearphone-pos/internal/model"
	"github.com/mmeshcher/bearphone-pos/internal/repository"
	"github.com/mmeshcher/bearphone-pos/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateSale(ctx context.Context, in service.CreateSaleInput) (*model.Sale, error)
	ListSales(ctx context.Context) ([]model.Sale, error)
	GetSaleByID(ctx context.Context, id int64) (*model.Sale, error)
	GetStats(ctx context.Context) (*model.DashboardStats, error)
}

// Renderer определяет контракт генерации PDF-счёта.
type Renderer interface {
	Render(w io.Writer, s *model.Sale) error
}

// Handler реализует HTTP-обработчики API POS-системы.
type Handler struct {
	service  Service
	renderer Renderer
	logger   *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, r Renderer, logger *zap.Logger) *Handler {
	return &Handler{
		service:  s,
		renderer: r,
		logger:   logger,
	}
}

type createSaleRequest struct {
	CustomerName     string  `json:"customerName"`
	Phone            string  `json:"phone"`
	ItemDescription  string  `json:"itemDescription"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	Discount         float64 `json:"discount"`
	Paid             float64 `json:"paid"`
	WarrantyDuration string  `json:"warrantyDuration"`
	Notes            string  `json:"notes"`
}

type saleResponse struct {
	ID               int64   `json:"id"`
	CustomerName     string  `json:"customerName"`
	Phone            string  `json:"phone"`
	ItemDescription  string  `json:"itemDescription"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
	Discount         float64 `json:"discount"`
	NetAmount        float64 `json:"netAmount"`
	Paid             float64 `json:"paid"`
	Remaining        float64 `json:"remaining"`
	WarrantyDuration string  `json:"warrantyDuration"`
	WarrantyExpiry   *string `json:"warrantyExpiry,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	SaleDate         string  `json:"saleDate"`
	CreatedAt        string  `json:"createdAt"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func toSaleResponse(s *model.Sale) saleResponse {
	resp := saleResponse{
		ID:               s.ID,
		CustomerName:     s.CustomerName,
		Phone:            s.Phone,
		ItemDescription:  s.ItemDescription,
		Quantity:         s.Quantity,
		Price:            float64(s.PriceCents) / 100,
		Discount:         float64(s.DiscountCents) / 100,
		NetAmount:        float64(s.NetAmountCents) / 100,
		Paid:             float64(s.PaidCents) / 100,
		Remaining:        float64(s.RemainingCents) / 100,
		WarrantyDuration: string(s.WarrantyDuration),
		Notes:            s.Notes,
		SaleDate:         s.SaleDate.Format(time.RFC3339),
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
	}
	if s.WarrantyExpiry != nil {
		expiry := s.WarrantyExpiry.Format(time.RFC3339)
		resp.WarrantyExpiry = &expiry
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// CreateSale обрабатывает создание новой продажи.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := h.service.CreateSale(r.Context(), service.CreateSaleInput{
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		ItemDescription:  req.ItemDescription,
		Quantity:         req.Quantity,
		Price:            req.Price,
		Discount:         req.Discount,
		Paid:             req.Paid,
		WarrantyDuration: req.WarrantyDuration,
		Notes:            req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create sale error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save sale")
		return
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(stored))
}

// ListSales возвращает все продажи, самые свежие первыми.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListSales(r.Context())
	if err != nil {
		h.logger.Error("list sales error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	resp := make([]saleResponse, 0, len(sales))
	for i := range sales {
		resp = append(resp, toSaleResponse(&sales[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func saleIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// GetSale возвращает одну продажу по идентификатору.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := saleIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "sale not found")
		return
	}

	stored, err := h.service.GetSaleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			writeError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("get sale error", zap.Error(err), zap.Int64("saleID", id))
		writeError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(stored))
}

// GetSalePDF отдаёт PDF-счёт по продаже.
func (h *Handler) GetSalePDF(w http.ResponseWriter, r *http.Request) {
	id, err := saleIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "sale not found")
		return
	}

	stored, err := h.service.GetSaleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			writeError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("get sale for pdf error", zap.Error(err), zap.Int64("saleID", id))
		writeError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=invoice-%d.pdf", id))

	// Документ пишется в ответ по мере генерации; после первого байта
	// сменить код ответа уже нельзя, поэтому ошибка только журналируется.
	if err := h.renderer.Render(w, stored); err != nil {
		h.logger.Error("render invoice error", zap.Error(err), zap.Int64("saleID", id))
	}
}

// GetStats возвращает агрегированные показатели панели управления.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		h.logger.Error("get stats error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Health сообщает о готовности сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Bear Phone POS API is running",
	})
}
