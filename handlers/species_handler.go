package handlers

import (
	"net/http"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/services"
)

type SpeciesHandler struct {
	speciesService services.SpeciesService
}

func NewSpeciesHandler(speciesService services.SpeciesService) *SpeciesHandler {
	return &SpeciesHandler{speciesService: speciesService}
}

// List godoc
// @Summary Справочник видов рыб
// @Tags species
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /species [get]
func (h *SpeciesHandler) List(w http.ResponseWriter, r *http.Request) {
	species, err := h.speciesService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"species": species}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetScoring godoc
// @Summary Задать таблицу очков вида для турнира (CATCH_RELEASE)
// @Tags species
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/species-scoring [put]
func (h *SpeciesHandler) SetScoring(w http.ResponseWriter, r *http.Request) {
	tournamentID, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var scoring models.SpeciesScoring
	if err := readJSON(w, r, &scoring); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	scoring.TournamentID = tournamentID

	if err := h.speciesService.SetScoring(r.Context(), callerID, callerRole, &scoring); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scoring": scoring}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListScoring godoc
// @Summary Таблицы очков видов для турнира
// @Tags species
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/species-scoring [get]
func (h *SpeciesHandler) ListScoring(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scoring, err := h.speciesService.ListScoring(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"scoring": scoring}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
