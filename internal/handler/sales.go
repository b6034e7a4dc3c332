package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/database"
	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/rollup"
	"github.com/pasos-retail/api/internal/service"
	"github.com/pasos-retail/api/internal/ws"
)

// SaleWorkflow defines the service methods needed by sale handlers.
// Satisfied by *service.SaleService.
type SaleWorkflow interface {
	CreateSale(ctx context.Context, req service.CreateSaleRequest) (domain.Sale, error)
	RegisterReturn(ctx context.Context, saleID uuid.UUID, req service.ReturnRequest) (domain.Sale, error)
}

// SalesStore defines the database methods needed by sale read endpoints.
// Satisfied by *database.Store.
type SalesStore interface {
	GetSale(ctx context.Context, id uuid.UUID) (domain.Sale, error)
	ListSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]domain.Sale, error)
}

// Broadcaster pushes live events to back-office dashboards.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToStore(storeID uuid.UUID, event ws.Event)
}

// SalesHandler handles sale endpoints.
type SalesHandler struct {
	workflow SaleWorkflow
	store    SalesStore
	hub      Broadcaster
}

// NewSalesHandler creates a new SalesHandler. hub may be nil in tests.
func NewSalesHandler(workflow SaleWorkflow, store SalesStore, hub Broadcaster) *SalesHandler {
	return &SalesHandler{workflow: workflow, store: store, hub: hub}
}

// RegisterRoutes registers store-scoped sale endpoints.
// Expected to be mounted inside a store-scoped subrouter: /stores/{sid}/sales
func (h *SalesHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/return", h.Return)
}

// --- Request / Response types ---

type createSaleRequest struct {
	PaymentMethod string                  `json:"payment_method"`
	Status        string                  `json:"status"`
	Items         []createSaleItemRequest `json:"items"`
}

type createSaleItemRequest struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type returnRequest struct {
	Reason        string              `json:"reason"`
	Note          string              `json:"note"`
	Cancellations []returnItemRequest `json:"cancellations"`
}

type returnItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

type saleResponse struct {
	ID            uuid.UUID          `json:"id"`
	StoreID       uuid.UUID          `json:"store_id"`
	Total         string             `json:"total"`
	NetTotal      string             `json:"net_total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []saleItemResponse `json:"items"`
	Return        *returnResponse    `json:"return,omitempty"`
}

type saleItemResponse struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
}

type returnResponse struct {
	Reason        string               `json:"reason"`
	Note          string               `json:"note"`
	CreatedAt     time.Time            `json:"created_at"`
	Cancellations []returnItemResponse `json:"cancellations"`
}

type returnItemResponse struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int32     `json:"quantity"`
}

// --- Handlers ---

// Create records a new sale for the store in the URL.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcReq := service.CreateSaleRequest{
		StoreID:       storeID,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
	}
	for _, item := range req.Items {
		svcReq.Items = append(svcReq.Items, service.CreateSaleItemRequest{
			SKU:         item.SKU,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	sale, err := h.workflow.CreateSale(r.Context(), svcReq)
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create sale: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast(storeID, "sale.created", sale)
	writeJSON(w, http.StatusCreated, toSaleResponse(sale))
}

// Return attaches a return (partial or total cancellation) to a sale.
func (h *SalesHandler) Return(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sale ID"})
		return
	}

	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcReq := service.ReturnRequest{Reason: req.Reason, Note: req.Note}
	for _, c := range req.Cancellations {
		svcReq.Cancellations = append(svcReq.Cancellations, service.ReturnItemRequest{
			ItemID:   c.ItemID,
			Quantity: c.Quantity,
		})
	}

	sale, err := h.workflow.RegisterReturn(r.Context(), saleID, svcReq)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "sale not found"})
		case errors.Is(err, service.ErrReturnExists):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case isValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: register return: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	h.broadcast(storeID, "sale.returned", sale)
	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// Get returns a single sale with its items and return.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sale ID"})
		return
	}

	sale, err := h.store.GetSale(r.Context(), saleID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "sale not found"})
			return
		}
		log.Printf("ERROR: get sale: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(sale))
}

// List returns the sales of one Santiago civil day, today by default.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().In(rollup.Location()).Format("2006-01-02")
	}
	dayStart, err := time.ParseInLocation("2006-01-02", day, rollup.Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	sales, err := h.store.ListSales(r.Context(), storeID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		log.Printf("ERROR: list sales: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]saleResponse, len(sales))
	for i, sale := range sales {
		resp[i] = toSaleResponse(sale)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *SalesHandler) broadcast(storeID uuid.UUID, eventType string, sale domain.Sale) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(toSaleResponse(sale))
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToStore(storeID, ws.Event{Type: eventType, Payload: payload})
}

func toSaleResponse(sale domain.Sale) saleResponse {
	resp := saleResponse{
		ID:            sale.ID,
		StoreID:       sale.StoreID,
		Total:         decimalString(sale.Total),
		NetTotal:      decimalString(rollup.NetAmount(sale)),
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt,
	}

	resp.Items = make([]saleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		resp.Items[i] = saleItemResponse{
			ID:          item.ID,
			SKU:         item.SKU,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   decimalString(item.UnitPrice),
		}
	}

	if sale.Return != nil {
		ret := &returnResponse{
			Reason:    sale.Return.Reason,
			Note:      sale.Return.Note,
			CreatedAt: sale.Return.CreatedAt,
		}
		ret.Cancellations = make([]returnItemResponse, len(sale.Return.Cancellations))
		for i, c := range sale.Return.Cancellations {
			ret.Cancellations[i] = returnItemResponse{ItemID: c.ItemID, Quantity: c.Quantity}
		}
		resp.Return = ret
	}

	return resp
}

func decimalString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		service.ErrEmptyItems,
		service.ErrInvalidQuantity,
		service.ErrInvalidUnitPrice,
		service.ErrInvalidPaymentMethod,
		service.ErrInvalidStatus,
		service.ErrInvalidItemID,
		service.ErrEmptyCancellations,
		service.ErrReturnNotAllowed,
		service.ErrUnknownItem,
		service.ErrReturnQuantity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
