package board

import "time"

// MatchStatus represents the lifecycle phase of a room's match.
type MatchStatus string

const (
	MatchStatusSetup    MatchStatus = "setup"
	MatchStatusLive     MatchStatus = "live"
	MatchStatusExpired  MatchStatus = "expired"
	MatchStatusArchived MatchStatus = "archived"
)

// IsValid reports whether the status is one of the known phases.
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusSetup, MatchStatusLive, MatchStatusExpired, MatchStatusArchived:
		return true
	}
	return false
}

// TeamSide represents which end of the pitch a team defends.
type TeamSide string

const (
	TeamSideHome TeamSide = "home"
	TeamSideAway TeamSide = "away"
)

// Player represents one token on the board.
// Coordinates are normalized to the unit square.
type Player struct {
	PlayerID     string  `json:"player_id"`
	TeamID       string  `json:"team_id"`
	RoomID       string  `json:"room_id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Label        string  `json:"label,omitempty"`
	Role         string  `json:"role,omitempty"`
	IsGoalkeeper bool    `json:"is_goalkeeper"`
}

// Team represents one side of the board and its players.
// Players keep their slice order so rendering stays stable across updates.
type Team struct {
	TeamID  string   `json:"team_id"`
	RoomID  string   `json:"room_id"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Side    TeamSide `json:"side"`
	Players []Player `json:"players"`
}

// Room represents the full shared board state.
// Version is authoritative only when it arrives in a snapshot; optimistic
// local edits never recompute it.
type Room struct {
	RoomID      string      `json:"room_id"`
	Slug        string      `json:"slug"`
	MatchStatus MatchStatus `json:"match_status"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	Version     int64       `json:"version"`
	Teams       []Team      `json:"teams"`
}

// Team returns the team with the given ID, or nil if the room has no such team.
func (r *Room) Team(teamID string) *Team {
	for i := range r.Teams {
		if r.Teams[i].TeamID == teamID {
			return &r.Teams[i]
		}
	}
	return nil
}

// Copy returns a deep copy of the room.
func (r *Room) Copy() *Room {
	if r == nil {
		return nil
	}
	cp := *r
	if r.ExpiresAt != nil {
		expiresAt := *r.ExpiresAt
		cp.ExpiresAt = &expiresAt
	}
	cp.Teams = make([]Team, len(r.Teams))
	for i, team := range r.Teams {
		cp.Teams[i] = team
		cp.Teams[i].Players = make([]Player, len(team.Players))
		copy(cp.Teams[i].Players, team.Players)
	}
	return &cp
}

// LocalUser identifies the current user for the lifetime of the session.
// It is generated locally and never persisted.
type LocalUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
