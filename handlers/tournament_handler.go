package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Marinovinc/TournamentMaster/middleware"
	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"github.com/Marinovinc/TournamentMaster/services"
)

const maxLogoSize = 5 << 20 // 5MB

type TournamentHandler struct {
	tournamentService services.TournamentService
	leaderboard       services.LeaderboardService
}

func NewTournamentHandler(tournamentService services.TournamentService, leaderboard services.LeaderboardService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		leaderboard:       leaderboard,
	}
}

// Create godoc
// @Summary Создать турнир (статус DRAFT)
// @Tags tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var t models.Tournament
	if err := readJSON(w, r, &t); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.tournamentService.Create(r.Context(), userID, &t)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Турнир по ID вместе с зонами лова
// @Tags tournaments
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{id} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Список турниров
// @Tags tournaments
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param game_mode query string false "Фильтр по режиму"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("game_mode"); raw != "" {
		mode := models.GameMode(raw)
		filter.GameMode = &mode
	}
	if organizerID := queryInt(r, "organizer_id", 0); organizerID > 0 {
		filter.OrganizerID = &organizerID
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Обновить турнир (до открытия регистрации)
// @Tags tournaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id} [put]
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var t models.Tournament
	if err := readJSON(w, r, &t); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t.ID = id

	updated, err := h.tournamentService.Update(r.Context(), callerID, callerRole, &t)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить черновик турнира
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 204
// @Router /tournaments/{id} [delete]
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.tournamentService.Delete(r.Context(), callerID, callerRole, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary Загрузить логотип турнира
// @Tags tournaments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/logo [post]
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	t, err := h.tournamentService.UploadLogo(r.Context(), callerID, callerRole, id, services.MediaUpload{
		Reader:      file,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Transition-обработчики: один шаблон на каждый переход жизненного цикла.

// Publish godoc
// @Summary DRAFT -> PUBLISHED (нужна хотя бы одна зона лова)
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/publish [post]
func (h *TournamentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.tournamentService.Publish)
}

// OpenRegistration godoc
// @Summary PUBLISHED -> REGISTRATION_OPEN
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/open-registration [post]
func (h *TournamentHandler) OpenRegistration(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.tournamentService.OpenRegistration)
}

// CloseRegistration godoc
// @Summary REGISTRATION_OPEN -> REGISTRATION_CLOSED
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/close-registration [post]
func (h *TournamentHandler) CloseRegistration(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.tournamentService.CloseRegistration)
}

// Start godoc
// @Summary REGISTRATION_CLOSED -> ONGOING (нужен минимум участников)
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/start [post]
func (h *TournamentHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.tournamentService.Start)
}

// Complete godoc
// @Summary ONGOING -> COMPLETED (не должно остаться PENDING-уловов)
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/complete [post]
func (h *TournamentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.tournamentService.Complete)
}

// Cancel godoc
// @Summary Отмена турнира из любого нетерминального статуса
// @Tags tournaments
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/cancel [post]
func (h *TournamentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.tournamentService.Cancel)
}

// Stats godoc
// @Summary Сводная статистика турнира
// @Tags tournaments
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/stats [get]
func (h *TournamentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.leaderboard.GetTournamentStats(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type transitionFunc func(ctx context.Context, callerID int, callerRole models.UserRole, id int) (*models.Tournament, error)

func (h *TournamentHandler) applyTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	id, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	t, err := fn(r.Context(), callerID, callerRole, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// requestIdentity достаёт ID ресурса из URL и личность вызывающего из токена.
func requestIdentity(r *http.Request) (resourceID, callerID int, callerRole models.UserRole, err error) {
	resourceID, err = getIDFromURL(r, "id")
	if err != nil {
		return 0, 0, "", err
	}
	callerID, err = middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return 0, 0, "", err
	}
	callerRole, err = middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return 0, 0, "", err
	}
	return resourceID, callerID, callerRole, nil
}
