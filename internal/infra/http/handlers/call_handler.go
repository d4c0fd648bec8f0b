package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
)

type CallHandler struct {
	repo entity.CallRepositoryInterface
}

func NewCallHandler(repo entity.CallRepositoryInterface) *CallHandler {
	return &CallHandler{repo: repo}
}

func (h *CallHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	calls, err := h.repo.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calls")
		return
	}

	writeJSON(w, http.StatusOK, calls)
}

func (h *CallHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in entity.Call
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	call, err := entity.NewCall(in.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Status != "" {
		call.Status = in.Status
	}
	call.Direction = in.Direction
	call.ParentType = in.ParentType
	call.ParentID = in.ParentID
	call.AssignedUserID = in.AssignedUserID
	call.Description = in.Description
	call.DateStart = in.DateStart
	call.DateEnd = in.DateEnd

	if err := h.repo.Create(r.Context(), call); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create call")
		return
	}

	writeJSON(w, http.StatusCreated, call)
}

func (h *CallHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	call, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Call not found")
		return
	}

	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	call, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Call not found")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(call); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	call.ID = id

	if err := call.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), call); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update call")
		return
	}

	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete call")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
