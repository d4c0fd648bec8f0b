package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type OrganizationHandler struct {
	repo entity.OrganizationRepositoryInterface
}

func NewOrganizationHandler(repo entity.OrganizationRepositoryInterface) *OrganizationHandler {
	return &OrganizationHandler{repo: repo}
}

func (h *OrganizationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	orgs, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list organizations")
		return
	}

	writeJSON(w, http.StatusOK, orgs)
}

func (h *OrganizationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in entity.Organization
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	org, err := entity.NewOrganization(in.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	org.Website = in.Website
	org.Industry = in.Industry
	org.EmailAddress = in.EmailAddress
	org.PhoneNumber = in.PhoneNumber
	org.BillingCity = in.BillingCity
	org.BillingCountry = in.BillingCountry
	org.AssignedUserID = in.AssignedUserID
	org.Description = in.Description

	if err := h.repo.Create(r.Context(), org); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	org, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Organization not found")
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (h *OrganizationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	org, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Organization not found")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(org); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	org.ID = id

	if err := org.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), org); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update organization")
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (h *OrganizationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete organization")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
