package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Marinovinc/TournamentMaster/services"
)

type FishingZoneHandler struct {
	zoneService services.FishingZoneService
}

func NewFishingZoneHandler(zoneService services.FishingZoneService) *FishingZoneHandler {
	return &FishingZoneHandler{zoneService: zoneService}
}

// Create godoc
// @Summary Создать зону лова (GeoJSON-полигон или круг)
// @Tags zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Невалидный GeoJSON"
// @Router /tournaments/{id}/zones [post]
func (h *FishingZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Name      string          `json:"name"`
		GeoJSON   json.RawMessage `json:"geo_json,omitempty"`
		CenterLat *float64        `json:"center_lat,omitempty"`
		CenterLng *float64        `json:"center_lng,omitempty"`
		RadiusKm  *float64        `json:"radius_km,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zone, err := h.zoneService.Create(r.Context(), callerID, callerRole, services.CreateZoneInput{
		TournamentID: tournamentID,
		Name:         input.Name,
		GeoJSON:      input.GeoJSON,
		CenterLat:    input.CenterLat,
		CenterLng:    input.CenterLng,
		RadiusKm:     input.RadiusKm,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"zone": zone}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Зоны лова турнира
// @Tags zones
// @Produce json
// @Param id path int true "Tournament ID"
// @Param active query bool false "Только активные"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{id}/zones [get]
func (h *FishingZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	onlyActive := r.URL.Query().Get("active") == "true"
	zones, err := h.zoneService.ListByTournament(r.Context(), tournamentID, onlyActive)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zones": zones}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Зона лова с площадью в кв. км
// @Tags zones
// @Produce json
// @Param id path int true "Zone ID"
// @Success 200 {object} map[string]interface{}
// @Router /zones/{id} [get]
func (h *FishingZoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	info, err := h.zoneService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zone": info.Zone, "area_square_km": info.AreaSquareKm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Обновить зону лова
// @Tags zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Zone ID"
// @Success 200 {object} map[string]interface{}
// @Router /zones/{id} [put]
func (h *FishingZoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	zoneID, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Name     string          `json:"name"`
		GeoJSON  json.RawMessage `json:"geo_json,omitempty"`
		IsActive bool            `json:"is_active"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zone, err := h.zoneService.Update(r.Context(), callerID, callerRole, zoneID, input.Name, input.GeoJSON, input.IsActive)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zone": zone}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить зону лова
// @Tags zones
// @Security BearerAuth
// @Param id path int true "Zone ID"
// @Success 204
// @Router /zones/{id} [delete]
func (h *FishingZoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	zoneID, callerID, callerRole, err := requestIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.zoneService.Delete(r.Context(), callerID, callerRole, zoneID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
