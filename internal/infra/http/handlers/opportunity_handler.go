package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type OpportunityHandler struct {
	repo entity.OpportunityRepositoryInterface
}

func NewOpportunityHandler(repo entity.OpportunityRepositoryInterface) *OpportunityHandler {
	return &OpportunityHandler{repo: repo}
}

func (h *OpportunityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	organizationID := r.URL.Query().Get("organization_id")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	opps, err := h.repo.List(r.Context(), organizationID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list opportunities")
		return
	}

	writeJSON(w, http.StatusOK, opps)
}

func (h *OpportunityHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in entity.Opportunity
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	opp, err := entity.NewOpportunity(in.Name, in.OrganizationID, in.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opp.ContactID = in.ContactID
	if in.Stage != "" {
		opp.Stage = in.Stage
	}
	if in.Probability > 0 {
		opp.Probability = in.Probability
	}
	if !in.CloseDate.IsZero() {
		opp.CloseDate = in.CloseDate
	}
	opp.LeadSource = in.LeadSource
	opp.AssignedUserID = in.AssignedUserID
	opp.Description = in.Description

	if err := h.repo.Create(r.Context(), opp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create opportunity")
		return
	}

	writeJSON(w, http.StatusCreated, opp)
}

func (h *OpportunityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	opp, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	writeJSON(w, http.StatusOK, opp)
}

func (h *OpportunityHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	opp, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(opp); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	opp.ID = id

	if err := opp.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), opp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update opportunity")
		return
	}

	writeJSON(w, http.StatusOK, opp)
}

func (h *OpportunityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete opportunity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
