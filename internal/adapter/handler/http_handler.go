package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/service"
	"github.com/rl1809/cake-orders/internal/core/validation"
	"github.com/rl1809/cake-orders/internal/port"
)

const maxRequestBody = 1 << 20

type HTTPHandler struct {
	sessions  *service.Sessions
	customers *service.CustomerService
	pricing   *pricing.Engine
	timeout   time.Duration
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Step       string `json:"step,omitempty"`
	StepNumber int    `json:"stepNumber,omitempty"`
}

type WizardResponse struct {
	SessionID string        `json:"sessionId"`
	State     service.State `json:"state"`
}

type OpenWizardRequest struct {
	SessionID string `json:"sessionId"`
}

type CopyOrderRequest struct {
	CustomerID string `json:"customerId"`
	OrderID    string `json:"orderId"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type EstimateRequest struct {
	Layers []domain.Layer `json:"layers"`
}

type EstimateResponse struct {
	TotalCents int64 `json:"totalCents"`
}

type CatalogResponse struct {
	Sizes         []domain.CakeSize     `json:"sizes"`
	StandardCakes []domain.StandardCake `json:"standardCakes"`
}

func NewHTTPHandler(sessions *service.Sessions, customers *service.CustomerService, engine *pricing.Engine, timeout time.Duration) *HTTPHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPHandler{sessions: sessions, customers: customers, pricing: engine, timeout: timeout}
}

// Routes builds the instrumented router.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.Catalog)
		r.Post("/estimate", h.Estimate)

		r.Post("/customers", h.CreateCustomer)
		r.Get("/customers/{id}/recent-orders", h.RecentOrders)

		r.Post("/wizards", h.OpenWizard)
		r.Route("/wizards/{id}", func(r chi.Router) {
			r.Get("/", h.GetWizard)
			r.Patch("/", h.UpdateWizard)
			r.Delete("/", h.CloseWizard)
			r.Post("/next", h.Next)
			r.Post("/back", h.Back)
			r.Post("/save", h.Save)
			r.Post("/reset", h.Reset)
			r.Post("/submit", h.Submit)
			r.Post("/copy", h.CopyOrder)
			r.Post("/customer-search", h.SearchCustomers)
			r.Get("/customer-search", h.SearchResults)
		})
	})

	return otelhttp.NewHandler(r, "cake-orders")
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/catalog
func (h *HTTPHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	c := h.pricing.Catalog()
	writeJSON(w, http.StatusOK, CatalogResponse{Sizes: c.Sizes(), StandardCakes: c.StandardCakes()})
}

// POST /api/v1/estimate
func (h *HTTPHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, EstimateResponse{TotalCents: pricing.CalculateTotalPrice(req.Layers, pricing.DefaultRates())})
}

// POST /api/v1/customers
func (h *HTTPHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.NewCustomer
	if !decode(w, r, &req) {
		return
	}
	c, err := h.customers.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GET /api/v1/customers/{id}/recent-orders
func (h *HTTPHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.customers.RecentOrders(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// POST /api/v1/wizards
func (h *HTTPHandler) OpenWizard(w http.ResponseWriter, r *http.Request) {
	var req OpenWizardRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	sess, created := h.sessions.Open(r.Context(), req.SessionID)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, WizardResponse{SessionID: sess.ID, State: sess.Wizard.State()})
}

// GET /api/v1/wizards/{id}
func (h *HTTPHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeState(w, sess)
}

// PATCH /api/v1/wizards/{id}
func (h *HTTPHandler) UpdateWizard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch domain.DraftPatch
	if !decode(w, r, &patch) {
		return
	}
	if err := sess.Wizard.UpdateFormData(patch); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

// DELETE /api/v1/wizards/{id}
func (h *HTTPHandler) CloseWizard(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/wizards/{id}/next
func (h *HTTPHandler) Next(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Wizard.GoNext(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

// POST /api/v1/wizards/{id}/back
func (h *HTTPHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Wizard.GoBack()
	writeState(w, sess)
}

// POST /api/v1/wizards/{id}/save
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Wizard.SaveDraft(r.Context()); err != nil {
		log.Printf("session %s: save draft: %v", sess.ID, err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "draft could not be saved"})
		return
	}
	writeState(w, sess)
}

// POST /api/v1/wizards/{id}/reset
func (h *HTTPHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Wizard.Reset(r.Context()); err != nil {
		log.Printf("session %s: clear draft on reset: %v", sess.ID, err)
	}
	writeState(w, sess)
}

// POST /api/v1/wizards/{id}/submit
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	conf, err := sess.Wizard.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

// POST /api/v1/wizards/{id}/copy
func (h *HTTPHandler) CopyOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req CopyOrderRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CustomerID == "" || req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "customerId and orderId are required"})
		return
	}

	past, err := h.customers.PastOrder(r.Context(), req.CustomerID, req.OrderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Wizard.CopyOrder(*past); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

// POST /api/v1/wizards/{id}/customer-search
func (h *HTTPHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	sess.Search.Query(req.Query)
	writeJSON(w, http.StatusAccepted, sess.Search.Results())
}

// GET /api/v1/wizards/{id}/customer-search
func (h *HTTPHandler) SearchResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Search.Results())
}

func (h *HTTPHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func writeState(w http.ResponseWriter, sess *service.Session) {
	writeJSON(w, http.StatusOK, WizardResponse{SessionID: sess.ID, State: sess.Wizard.State()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var stepErr *validation.StepError
	switch {
	case errors.As(err, &stepErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      stepErr.Err.Error(),
			Step:       stepErr.Step.String(),
			StepNumber: stepErr.Step.Number(),
		})
	case errors.Is(err, service.ErrSubmitInProgress):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrPastOrderNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrCustomerNameRequired),
		errors.Is(err, service.ErrCustomerEmailRequired),
		errors.Is(err, service.ErrCustomerEmailInvalid):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, port.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "bakery backend unavailable, try again shortly"})
	case errors.Is(err, port.ErrRejected), errors.Is(err, service.ErrUnreadableOrder):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		log.Printf("backend call failed: %v", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "bakery backend request failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
