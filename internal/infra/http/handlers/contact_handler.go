package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type ContactHandler struct {
	repo entity.ContactRepositoryInterface
}

func NewContactHandler(repo entity.ContactRepositoryInterface) *ContactHandler {
	return &ContactHandler{repo: repo}
}

func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	organizationID := r.URL.Query().Get("organization_id")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	contacts, err := h.repo.List(r.Context(), organizationID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contacts")
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in entity.Contact
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	contact, err := entity.NewContact(in.FirstName, in.LastName, in.OrganizationID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contact.Salutation = in.Salutation
	contact.Title = in.Title
	contact.EmailAddress = in.EmailAddress
	contact.PhoneNumber = in.PhoneNumber
	contact.DoNotCall = in.DoNotCall
	contact.AssignedUserID = in.AssignedUserID
	contact.Description = in.Description

	if err := h.repo.Create(r.Context(), contact); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contact")
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	contact, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	contact, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(contact); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	contact.ID = id

	if err := contact.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), contact); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update contact")
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
