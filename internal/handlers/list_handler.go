package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rubrica/internal/middleware"
	"rubrica/internal/models"
	"rubrica/internal/repository"
	"rubrica/pkg/validator"
)

// ListHandler handles report-list requests
type ListHandler struct {
	listRepo *repository.ListRepository
}

// NewListHandler creates a new list handler
func NewListHandler(listRepo *repository.ListRepository) *ListHandler {
	return &ListHandler{listRepo: listRepo}
}

// ListRequest carries a list's caller-editable fields
type ListRequest struct {
	Name string `json:"name" validate:"required"`
}

// List returns all lists owned by the caller
// @Summary List report lists
// @Tags Lists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.List
// @Router /lists [get]
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	lists, err := h.listRepo.ListByUser(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, lists)
}

// Create creates a new list
// @Summary Create a report list
// @Tags Lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ListRequest true "List name"
// @Success 201 {object} models.List
// @Failure 400 {object} map[string]string "Missing name"
// @Router /lists [post]
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	list := &models.List{Name: req.Name, UserID: user.ID}
	if err := h.listRepo.Create(list); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   list.ID,
		"name": list.Name,
	})
}

// Get returns one list owned by the caller
// @Summary Get a report list
// @Tags Lists
// @Produce json
// @Security BearerAuth
// @Param id path int true "List id"
// @Success 200 {object} models.List
// @Failure 404 {object} map[string]string "Unknown or foreign list"
// @Router /lists/{id} [get]
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parseListID(r)
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
		return
	}

	list, err := h.listRepo.GetByID(id)
	if err != nil || list.UserID != user.ID {
		respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

// Update renames a list owned by the caller
// @Summary Rename a report list
// @Tags Lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "List id"
// @Param request body ListRequest true "New name"
// @Success 200 {object} map[string]string "Status message"
// @Failure 404 {object} map[string]string "Unknown or foreign list"
// @Router /lists/{id} [put]
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parseListID(r)
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
		return
	}

	var req ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.listRepo.UpdateForUser(id, user.ID, req.Name); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "List updated"})
}

// Delete removes a list. Reports in the list survive with their association
// cleared. A list owned by someone else is reported as forbidden, not hidden.
// @Summary Delete a report list
// @Tags Lists
// @Produce json
// @Security BearerAuth
// @Param id path int true "List id"
// @Success 200 {object} map[string]string "Status message"
// @Failure 403 {object} map[string]string "List owned by another user"
// @Failure 404 {object} map[string]string "Unknown list"
// @Router /lists/{id} [delete]
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := parseListID(r)
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
		return
	}

	list, err := h.listRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if list.UserID != user.ID {
		respondWithError(w, http.StatusForbidden, "List belongs to another user")
		return
	}

	if err := h.listRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			// Raced with a concurrent delete; the row is gone either way
			respondWithError(w, http.StatusNotFound, ErrMsgListNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "List deleted"})
}

// parseListID extracts the numeric list id from the request path
func parseListID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
