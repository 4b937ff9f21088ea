package middleware

import (
	"context"
	"errors"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/services"
)

var errNoClaims = errors.New("auth claims not found in context")

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	if !ok {
		return 0, errNoClaims
	}
	if claims.UserID <= 0 {
		return 0, errors.New("invalid user id in token claims")
	}
	return claims.UserID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	if !ok {
		return "", errNoClaims
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleOrganizer, models.RoleJudge, models.RolePlayer:
		return claims.Role, nil
	default:
		return "", errors.New("invalid role in token claims")
	}
}
