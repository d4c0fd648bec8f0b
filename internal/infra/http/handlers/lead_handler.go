package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
	"github.com/nextgencrm/nextgencrm-go/internal/usecase"
)

type LeadHandler struct {
	leadRepo    entity.LeadRepositoryInterface
	convertUC   *usecase.ConvertLeadUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(leadRepo entity.LeadRepositoryInterface, convertUC *usecase.ConvertLeadUseCase) *LeadHandler {
	return &LeadHandler{
		leadRepo:    leadRepo,
		convertUC:   convertUC,
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 req/min per IP
	}
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	leads, err := h.leadRepo.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var lead entity.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	created, err := entity.NewLead(lead.FirstName, lead.LastName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created.Salutation = lead.Salutation
	created.Title = lead.Title
	created.AccountName = lead.AccountName
	created.Website = lead.Website
	created.Industry = lead.Industry
	created.EmailAddress = lead.EmailAddress
	created.PhoneNumber = lead.PhoneNumber
	created.Source = lead.Source
	created.AssignedUserID = lead.AssignedUserID
	created.AssignedEmail = lead.AssignedEmail
	created.Description = lead.Description
	created.OpportunityAmount = lead.OpportunityAmount
	if lead.Status != "" {
		created.Status = lead.Status
	}

	if err := h.leadRepo.Create(r.Context(), created); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create lead")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.leadRepo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.leadRepo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(lead); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	lead.ID = id

	if err := lead.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.leadRepo.Update(r.Context(), lead); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.leadRepo.SoftDelete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleConvert drives POST /leads/{id}/convert. The whole multi-entity
// creation lives in the use case; this only translates errors into the
// wire shape clients match on.
func (h *LeadHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	output, err := h.convertUC.Execute(r.Context(), id)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
