package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Marinovinc/TournamentMaster/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"tournament not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"entry not found", services.ErrEntryNotFound, http.StatusNotFound},
		{"email conflict", services.ErrUserEmailConflict, http.StatusConflict},
		{"catch already reviewed", services.ErrCatchAlreadyReviewed, http.StatusConflict},
		{"pending catches block completion", services.ErrTournamentHasPendingCatches, http.StatusConflict},
		{"invalid transition", services.ErrTournamentInvalidStatusTransition, http.StatusConflict},
		{"validation", services.ErrValidationFailed, http.StatusBadRequest},
		{"no zones", services.ErrTournamentNoFishingZones, http.StatusBadRequest},
		{"not enough participants", services.ErrTournamentNotEnoughParticipants, http.StatusBadRequest},
		{"daily limit", services.ErrDailyCatchLimitReached, http.StatusBadRequest},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"tournament not active", services.ErrTournamentNotActive, http.StatusForbidden},
		{"not registered", services.ErrUserNotRegistered, http.StatusForbidden},
		{"unexpected error", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"ok"}`, ""},
		{"empty body", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"unknown field", `{"surname":"x"}`, "unknown key"},
		{"wrong type", `{"name":1}`, "incorrect JSON type for field"},
		{"two documents", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := readJSON(rec, req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("readJSON: %v", err)
				}
				if dst.Name != "ok" {
					t.Errorf("Name = %q", dst.Name)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetIDFromURL(t *testing.T) {
	newRequest := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/tournaments/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if id, err := getIDFromURL(newRequest("42"), "id"); err != nil || id != 42 {
		t.Errorf("getIDFromURL(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-1", "abc", ""} {
		if _, err := getIDFromURL(newRequest(bad), "id"); err == nil {
			t.Errorf("getIDFromURL(%q) expected error", bad)
		}
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=oops", nil)

	if got := queryInt(req, "page", 1); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if got := queryInt(req, "limit", 20); got != 20 {
		t.Errorf("limit fallback = %d, want 20", got)
	}
	if got := queryInt(req, "missing", 7); got != 7 {
		t.Errorf("missing fallback = %d, want 7", got)
	}
}
