package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed          = errors.New("validation failed") // Общая ошибка валидации
	ErrInvalidCoordinates        = errors.New("invalid GPS coordinates")
	ErrInvalidGeoJSON            = errors.New("fishing zone geometry must be a valid GeoJSON Polygon or MultiPolygon")
	ErrWeightRequired            = errors.New("weight is mandatory for traditional tournaments")
	ErrWeightBelowMinimum        = errors.New("catch weight is below the tournament minimum")
	ErrSpeciesRequired           = errors.New("species is mandatory for catch-and-release tournaments")
	ErrSizeCategoryRequired      = errors.New("size category is mandatory for catch-and-release tournaments")
	ErrReleaseVideoRequired      = errors.New("release video is mandatory for catch-and-release tournaments")
	ErrRejectionReasonRequired   = errors.New("rejection reason is required")
	ErrCatchOutsideDates         = errors.New("catch time is outside tournament dates")
	ErrDailyCatchLimitReached    = errors.New("daily catch limit reached")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidRegDates = errors.New("registration close date must be after open date")
	ErrTournamentInvalidDates    = errors.New("tournament end date must be after start date")

	// Ошибки конфликтов состояния
	ErrTournamentNotActive               = errors.New("tournament is not currently active")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNoFishingZones          = errors.New("tournament must have at least one fishing zone")
	ErrTournamentNotEnoughParticipants   = errors.New("tournament does not have enough confirmed participants")
	ErrTournamentHasPendingCatches       = errors.New("tournament has pending catches awaiting review")
	ErrTournamentTerminal                = errors.New("tournament is in a terminal state")
	ErrCatchAlreadyReviewed              = errors.New("catch has already been reviewed")
	ErrRegistrationNotOpen               = errors.New("tournament registration is not open")
	ErrRegistrationConflict              = errors.New("user is already registered for this tournament")
	ErrUserNotRegistered                 = errors.New("user is not registered for this tournament")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Ошибки аутентификации и авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (могут дублировать ErrNotFound, но дают больше контекста)
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrCatchNotFound       = errors.New("catch not found")
	ErrFishingZoneNotFound = errors.New("fishing zone not found")
	ErrSpeciesNotFound     = errors.New("species not found")
	ErrEntryNotFound       = errors.New("leaderboard entry not found")
)
