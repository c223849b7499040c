package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"patient-activation/models"
	"patient-activation/storage"
	"patient-activation/utilities"
)

const maxBodyBytes = 1 << 20

// ObjectiveHandler serves the objectives REST API over a Store.
type ObjectiveHandler struct {
	store storage.Store
}

func NewObjectiveHandler(store storage.Store) *ObjectiveHandler {
	return &ObjectiveHandler{store: store}
}

// Register mounts the objective routes on r.
func (h *ObjectiveHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/objectives", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/objectives", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/objectives/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/objectives/{id}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/api/objectives/{id}", h.Delete).Methods(http.MethodDelete)
}

// List returns every objective ordered by target date. status, priority and
// category query parameters narrow the result.
func (h *ObjectiveHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	objectives, err := h.store.List(r.Context())
	if err != nil {
		utilities.LogError(err, "listing objectives")
		writeError(w, http.StatusInternalServerError, "Failed to fetch objectives")
		return
	}

	objectives = filter.apply(objectives)
	utilities.LogDebug("listed %d objectives", len(objectives))
	writeJSON(w, http.StatusOK, objectives)
}

func (h *ObjectiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	objective, err := h.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Objective not found")
		return
	}
	if err != nil {
		utilities.LogError(err, "fetching objective "+id)
		writeError(w, http.StatusInternalServerError, "Failed to fetch objective")
		return
	}
	writeJSON(w, http.StatusOK, objective)
}

func (h *ObjectiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	insert, err := models.ValidateInsert(payload)
	if err != nil {
		h.rejectInvalid(w, err)
		return
	}

	objective, err := h.store.Create(r.Context(), insert)
	if err != nil {
		utilities.LogError(err, "creating objective")
		writeError(w, http.StatusInternalServerError, "Failed to create objective")
		return
	}

	utilities.LogInfo("objective created: %s (%s)", objective.Title, objective.ID)
	writeJSON(w, http.StatusCreated, objective)
}

func (h *ObjectiveHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	patch, err := models.ValidateUpdate(payload)
	if err != nil {
		h.rejectInvalid(w, err)
		return
	}

	objective, err := h.store.Update(r.Context(), id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Objective not found")
		return
	}
	if err != nil {
		utilities.LogError(err, "updating objective "+id)
		writeError(w, http.StatusInternalServerError, "Failed to update objective")
		return
	}

	utilities.LogInfo("objective updated: %s", id)
	writeJSON(w, http.StatusOK, objective)
}

func (h *ObjectiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Objective not found")
		return
	}
	if err != nil {
		utilities.LogError(err, "deleting objective "+id)
		writeError(w, http.StatusInternalServerError, "Failed to delete objective")
		return
	}

	utilities.LogInfo("objective deleted: %s", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ObjectiveHandler) rejectInvalid(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		utilities.LogDebug("rejected objective payload: %v", verr)
		writeValidationError(w, verr)
		return
	}
	utilities.LogError(err, "validating objective")
	writeError(w, http.StatusInternalServerError, "Failed to validate objective")
}

func decodePayload(w http.ResponseWriter, r *http.Request) (models.ObjectivePayload, bool) {
	var payload models.ObjectivePayload
	defer r.Body.Close()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload)
	if errors.Is(err, io.EOF) {
		// No body at all is an empty payload.
		return payload, true
	}
	if err != nil {
		utilities.LogDebug("invalid JSON payload: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return payload, false
	}
	return payload, true
}
