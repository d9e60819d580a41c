package repositories

import (
	"context"

	"github.com/castillofj/touchline/pkg/board"
)

// Repository stores rooms for the reference server. Implementations must
// be safe for concurrent use.
type Repository interface {
	Close(ctx context.Context) error
	// CreateRoom stores a new room with its teams and players.
	CreateRoom(ctx context.Context, room *board.Room) error
	// GetRoom returns the full room looked up by room ID or slug.
	GetRoom(ctx context.Context, idOrSlug string) (*board.Room, error)
	// SavePlayerPosition upserts a player within its owning team.
	SavePlayerPosition(ctx context.Context, player board.Player) error
	// UpdateTeam updates a team's name and color and returns the result.
	UpdateTeam(ctx context.Context, roomID, teamID, name, color string) (*board.Team, error)
	// SetMatchStatus updates the room's match status, bumps its version
	// and returns the new version.
	SetMatchStatus(ctx context.Context, roomID string, status board.MatchStatus) (int64, error)
}
