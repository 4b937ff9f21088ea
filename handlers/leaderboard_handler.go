package handlers

import (
	"net/http"

	"github.com/Marinovinc/TournamentMaster/middleware"
	"github.com/Marinovinc/TournamentMaster/services"
)

type LeaderboardHandler struct {
	leaderboard services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Get godoc
// @Summary Лидерборд турнира (постранично)
// @Tags leaderboard
// @Produce json
// @Param id path int true "Tournament ID"
// @Param page query int false "Страница" default(1)
// @Param limit query int false "Размер страницы" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/leaderboard [get]
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	page, err := h.leaderboard.GetLeaderboard(r.Context(), tournamentID, queryInt(r, "page", 1), queryInt(r, "limit", 50))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": page}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Top godoc
// @Summary Первые N строк лидерборда
// @Tags leaderboard
// @Produce json
// @Param id path int true "Tournament ID"
// @Param n query int false "Сколько строк" default(3)
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/leaderboard/top [get]
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.leaderboard.GetTopN(r.Context(), tournamentID, queryInt(r, "n", 3))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyPosition godoc
// @Summary Позиция текущего пользователя в лидерборде
// @Tags leaderboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Пользователь не в лидерборде"
// @Router /tournaments/{id}/leaderboard/me [get]
func (h *LeaderboardHandler) MyPosition(w http.ResponseWriter, r *http.Request) {
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

	position, err := h.leaderboard.GetUserPosition(r.Context(), tournamentID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"position": position}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
