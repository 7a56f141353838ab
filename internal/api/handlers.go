package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/austerelabs/stockfinder/internal/database"
	"github.com/austerelabs/stockfinder/internal/kafka"
	"github.com/austerelabs/stockfinder/internal/models"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       *database.DB
	producer *kafka.Producer
}

// NewHandler creates a new Handler. producer may be nil when event
// publishing is disabled.
func NewHandler(db *database.DB, producer *kafka.Producer) *Handler {
	return &Handler{
		db:       db,
		producer: producer,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetAllSymbols handles GET /symbols
func (h *Handler) GetAllSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.db.GetAllSymbols()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, symbols)
}

// GetSymbol handles GET /symbols/{symbol}
func (h *Handler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	symbol, err := h.db.GetSymbol(vars["symbol"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, symbol)
}

// AddSymbol handles POST /symbols
func (h *Handler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol      string `json:"symbol"`
		Type        string `json:"type"`
		Subtype     string `json:"subtype"`
		Exchange    string `json:"exchange"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Comment     string `json:"comment"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	symbol := &models.Symbol{
		Symbol:      req.Symbol,
		Type:        req.Type,
		Subtype:     req.Subtype,
		Exchange:    req.Exchange,
		Category:    req.Category,
		Description: req.Description,
		Comment:     req.Comment,
		Active:      true,
	}
	if err := h.db.CreateSymbol(symbol); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishSymbolAdded(r.Context(), symbol.Symbol); err != nil {
			log.Printf("Error publishing symbol added event: %v", err)
		}
	}

	respondJSON(w, http.StatusCreated, symbol)
}

// DeactivateSymbol handles DELETE /symbols/{symbol}. Deactivation is a
// soft flag; quote history stays in place.
func (h *Handler) DeactivateSymbol(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if err := h.db.DeactivateSymbol(symbol); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishSymbolDeactivated(r.Context(), symbol); err != nil {
			log.Printf("Error publishing symbol deactivated event: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "status": "deactivated"})
}

// GetQuotes handles GET /symbols/{symbol}/quotes?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	end := time.Now().UTC()
	start := end.AddDate(0, -1, 0)

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid start date", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid end date", http.StatusBadRequest)
			return
		}
		end = parsed
	}

	quotes, err := h.db.GetQuotesRange(symbol, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// GetAllWatches handles GET /watches
func (h *Handler) GetAllWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := h.db.GetAllWatches()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, watches)
}

// AddWatch handles POST /watches
func (h *Handler) AddWatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol     string  `json:"symbol"`
		LowerBound float64 `json:"lower_bound"`
		UpperBound float64 `json:"upper_bound"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	if req.LowerBound > req.UpperBound {
		http.Error(w, "lower_bound exceeds upper_bound", http.StatusBadRequest)
		return
	}

	watch := &models.Watch{
		Symbol:     req.Symbol,
		LowerBound: decimal.NewFromFloat(req.LowerBound),
		UpperBound: decimal.NewFromFloat(req.UpperBound),
		Enabled:    true,
	}
	if err := h.db.CreateWatch(watch); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, watch)
}

// RemoveWatch handles DELETE /watches/{id}
func (h *Handler) RemoveWatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid watch id", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteWatch(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetNotifications handles GET /notifications
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.db.GetNotifications(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
