package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"rubrica/internal/middleware"
	"rubrica/internal/models"
	"rubrica/internal/repository"
)

// ReportHandler handles evaluation report requests
type ReportHandler struct {
	reportRepo *repository.ReportRepository
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportRepo *repository.ReportRepository) *ReportHandler {
	return &ReportHandler{reportRepo: reportRepo}
}

// SearchRequest holds the exact-match search fields looked up inside the
// general-info sub-document
type SearchRequest struct {
	Title   string `json:"title"`
	Student string `json:"student"`
}

// List returns all reports owned by the caller
// @Summary List reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Report
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	reports, err := h.reportRepo.ListByUser(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// Get returns one report owned by the caller
// @Summary Get a report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {object} models.Report
// @Failure 404 {object} map[string]string "Unknown or foreign report"
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	report, err := h.reportRepo.GetByIDForUser(r.PathValue("id"), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgReportNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// Create stores a new report. All sub-documents are optional and default to
// their empty shape; the id is caller-supplied or generated.
// @Summary Create a report
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Report true "Report contents"
// @Success 201 {object} map[string]string "Created report id"
// @Failure 500 {object} map[string]string "Store failure"
// @Router /reports [post]
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var report models.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.UserID = user.ID

	if err := h.reportRepo.Create(&report); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": report.ID})
}

// Update replaces all six sub-documents and the list association of an
// existing report owned by the caller
// @Summary Update a report
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Param request body models.Report true "Replacement contents"
// @Success 200 {object} map[string]string "Status message"
// @Failure 404 {object} map[string]string "Unknown or foreign report"
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var report models.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	report.ID = r.PathValue("id")
	report.UserID = user.ID

	if err := h.reportRepo.UpdateForUser(&report); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgReportNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Report updated"})
}

// Delete removes a report owned by the caller
// @Summary Delete a report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {object} map[string]string "Status message"
// @Failure 404 {object} map[string]string "Unknown or foreign report"
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	if err := h.reportRepo.DeleteForUser(r.PathValue("id"), user.ID); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgReportNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Report deleted"})
}

// Search returns the caller's reports whose general info matches both fields
// exactly; the result may be empty
// @Summary Search reports
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SearchRequest true "Search fields"
// @Success 200 {array} models.Report
// @Router /reports/search [post]
func (h *ReportHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	reports, err := h.reportRepo.SearchByUser(user.ID, req.Title, req.Student)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}
