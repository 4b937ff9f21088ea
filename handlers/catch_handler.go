package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/Marinovinc/TournamentMaster/middleware"
	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"github.com/Marinovinc/TournamentMaster/services"
)

const maxCatchMediaSize = 50 << 20 // 50MB, видео выпуска бывают большими

type CatchHandler struct {
	catchService services.CatchService
}

func NewCatchHandler(catchService services.CatchService) *CatchHandler {
	return &CatchHandler{catchService: catchService}
}

// Submit godoc
// @Summary Подать улов (multipart: поля + фото/видео)
// @Tags catches
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "Турнир не активен или нет регистрации"
// @Router /tournaments/{id}/catches [post]
func (h *CatchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxCatchMediaSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	input, err := parseSubmitForm(r, tournamentID, userID)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer closeUploads(input)

	c, err := h.catchService.Submit(r.Context(), *input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"catch": c}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseSubmitForm(r *http.Request, tournamentID, userID int) (*services.SubmitCatchInput, error) {
	input := &services.SubmitCatchInput{
		TournamentID: tournamentID,
		UserID:       userID,
	}

	lat, err := strconv.ParseFloat(r.FormValue("latitude"), 64)
	if err != nil {
		return nil, errors.New("latitude is required and must be a number")
	}
	lng, err := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if err != nil {
		return nil, errors.New("longitude is required and must be a number")
	}
	input.Latitude = lat
	input.Longitude = lng

	caughtAt, err := time.Parse(time.RFC3339, r.FormValue("caught_at"))
	if err != nil {
		return nil, errors.New("caught_at is required in RFC3339 format")
	}
	input.CaughtAt = caughtAt

	if raw := r.FormValue("species_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return nil, errors.New("species_id must be a positive integer")
		}
		input.SpeciesID = &id
	}
	if raw := r.FormValue("weight"); raw != "" {
		weight, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("weight must be a number")
		}
		input.Weight = &weight
	}
	if raw := r.FormValue("length"); raw != "" {
		length, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("length must be a number")
		}
		input.Length = &length
	}
	if raw := r.FormValue("gps_accuracy"); raw != "" {
		accuracy, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("gps_accuracy must be a number")
		}
		input.GPSAccuracy = &accuracy
	}
	if raw := r.FormValue("size_category"); raw != "" {
		category := models.SizeCategory(raw)
		input.SizeCategory = &category
	}
	if raw := r.FormValue("notes"); raw != "" {
		input.Notes = &raw
	}
	input.WasReleased = r.FormValue("was_released") == "true"

	if media, err := formMedia(r, "photo"); err != nil {
		return nil, err
	} else if media != nil {
		input.Photo = media
	}
	if media, err := formMedia(r, "video"); err != nil {
		return nil, err
	} else if media != nil {
		input.Video = media
	}

	return input, nil
}

func formMedia(r *http.Request, field string) (*services.MediaUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s file", field)
	}
	return &services.MediaUpload{
		Reader:      file,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func closeUploads(input *services.SubmitCatchInput) {
	for _, media := range []*services.MediaUpload{input.Photo, input.Video} {
		if media == nil {
			continue
		}
		if closer, ok := media.Reader.(multipart.File); ok {
			closer.Close()
		}
	}
}

// Get godoc
// @Summary Улов по ID
// @Tags catches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Catch ID"
// @Success 200 {object} map[string]interface{}
// @Router /catches/{id} [get]
func (h *CatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	c, err := h.catchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"catch": c}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournament godoc
// @Summary Уловы турнира с фильтрами
// @Tags catches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Param status query string false "Фильтр по статусу"
// @Param user_id query int false "Фильтр по участнику"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/catches [get]
func (h *CatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.ListCatchesFilter{
		TournamentID: &tournamentID,
		Limit:        queryInt(r, "limit", 20),
		Offset:       queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.CatchStatus(raw)
		filter.Status = &status
	}
	if userID := queryInt(r, "user_id", 0); userID > 0 {
		filter.UserID = &userID
	}

	catches, total, err := h.catchService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"catches": catches, "total": total}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPending godoc
// @Summary Очередь уловов на рассмотрение
// @Tags catches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/catches/pending [get]
func (h *CatchHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	catches, total, err := h.catchService.ListPending(r.Context(), tournamentID, queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"catches": catches, "total": total}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Approve godoc
// @Summary Одобрить улов: начислить очки и пересчитать лидерборд
// @Tags catches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Catch ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Улов уже рассмотрен"
// @Router /catches/{id}/approve [post]
func (h *CatchHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.applyReview(w, r, h.catchService.Approve)
}

// Reject godoc
// @Summary Отклонить улов (причина обязательна)
// @Tags catches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Catch ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Улов уже рассмотрен"
// @Router /catches/{id}/reject [post]
func (h *CatchHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.applyReview(w, r, h.catchService.Reject)
}

func (h *CatchHandler) applyReview(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, catchID, reviewerID int, notes *string) (*models.Catch, error)) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	reviewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Notes *string `json:"notes"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	c, err := fn(r.Context(), id, reviewerID, input.Notes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"catch": c}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
