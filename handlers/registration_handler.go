package handlers

import (
	"context"
	"net/http"

	"github.com/Marinovinc/TournamentMaster/middleware"
	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register godoc
// @Summary Подать заявку на участие в турнире
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Регистрация не открыта"
// @Failure 409 {object} map[string]string "Уже зарегистрирован"
// @Router /tournaments/{id}/register [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
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

	var input struct {
		TeamName *string `json:"team_name"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	reg, err := h.registrationService.Register(r.Context(), tournamentID, userID, input.TeamName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Withdraw godoc
// @Summary Отозвать свою заявку до старта турнира
// @Tags registrations
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 204
// @Router /tournaments/{id}/register [delete]
func (h *RegistrationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
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

	if err := h.registrationService.Withdraw(r.Context(), userID, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOwn godoc
// @Summary Своя заявка на турнир
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/register [get]
func (h *RegistrationHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
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

	reg, err := h.registrationService.GetOwn(r.Context(), tournamentID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Confirm godoc
// @Summary Подтвердить заявку участника
// @Tags registrations
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 204
// @Router /registrations/{id}/confirm [post]
func (h *RegistrationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.applyReview(w, r, h.registrationService.Confirm)
}

// Reject godoc
// @Summary Отклонить заявку участника
// @Tags registrations
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 204
// @Router /registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.applyReview(w, r, h.registrationService.Reject)
}

func (h *RegistrationHandler) applyReview(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, callerID int, callerRole models.UserRole, registrationID int) error) {
	registrationID, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := fn(r.Context(), callerID, callerRole, registrationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
