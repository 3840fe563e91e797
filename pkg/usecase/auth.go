package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/model"
)

// AuthUseCase decides who may manage scheduled actions
type AuthUseCase struct {
	registry *model.GuildRegistry
}

func NewAuthUseCase(registry *model.GuildRegistry) *AuthUseCase {
	return &AuthUseCase{registry: registry}
}

// Authorize returns the guild configuration when roleIDs include a moderator role
func (uc *AuthUseCase) Authorize(ctx context.Context, guildID, userID string, roleIDs []string) (*model.GuildEntry, error) {
	guild, err := uc.registry.Get(guildID)
	if err != nil {
		return nil, newUserError(ErrGuildNotConfigured, "This server is not configured for moderation.",
			goerr.V(GuildIDKey, guildID))
	}

	if !guild.IsModerator(roleIDs) {
		return nil, newUserError(ErrUnauthorized, "Not enough permissions",
			goerr.V(GuildIDKey, guildID),
			goerr.V(RequestedByIDKey, userID))
	}

	return guild, nil
}
