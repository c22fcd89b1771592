package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/bearphone-pos/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware POS-системы.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/sales", func(r chi.Router) {
		r.Post("/", h.CreateSale)
		r.Get("/", h.ListSales)

		r.Get("/stats/dashboard", h.GetStats)

		r.Get("/{id}", h.GetSale)
		r.Get("/{id}/pdf", h.GetSalePDF)
	})

	r.Get("/health", h.Health)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
