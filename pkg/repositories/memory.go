package repositories

import (
	"context"
	"sync"

	"github.com/castillofj/touchline/pkg/board"
)

// InMemoryRepository keeps rooms in process memory. It backs the reference
// server in development and tests.
type InMemoryRepository struct {
	lock   sync.RWMutex
	rooms  map[string]*board.Room
	bySlug map[string]string
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rooms:  make(map[string]*board.Room),
		bySlug: make(map[string]string),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) CreateRoom(ctx context.Context, room *board.Room) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.rooms[room.RoomID] = room.Copy()
	if room.Slug != "" {
		r.bySlug[room.Slug] = room.RoomID
	}
	return nil
}

func (r *InMemoryRepository) GetRoom(ctx context.Context, idOrSlug string) (*board.Room, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	room := r.lookup(idOrSlug)
	if room == nil {
		return nil, &ErrNotFound{}
	}
	return room.Copy(), nil
}

func (r *InMemoryRepository) SavePlayerPosition(ctx context.Context, player board.Player) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	room := r.rooms[player.RoomID]
	if room == nil {
		return &ErrNotFound{}
	}
	team := room.Team(player.TeamID)
	if team == nil {
		return &ErrNotFound{}
	}
	for i := range team.Players {
		if team.Players[i].PlayerID == player.PlayerID {
			team.Players[i] = player
			return nil
		}
	}
	team.Players = append(team.Players, player)
	return nil
}

func (r *InMemoryRepository) UpdateTeam(ctx context.Context, roomID, teamID, name, color string) (*board.Team, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	room := r.lookup(roomID)
	if room == nil {
		return nil, &ErrNotFound{}
	}
	team := room.Team(teamID)
	if team == nil {
		return nil, &ErrNotFound{}
	}
	team.Name = name
	team.Color = color
	cp := *team
	cp.Players = make([]board.Player, len(team.Players))
	copy(cp.Players, team.Players)
	return &cp, nil
}

func (r *InMemoryRepository) SetMatchStatus(ctx context.Context, roomID string, status board.MatchStatus) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	room := r.lookup(roomID)
	if room == nil {
		return 0, &ErrNotFound{}
	}
	room.MatchStatus = status
	room.Version++
	return room.Version, nil
}

// lookup resolves a room by ID first, then by slug. Called with the lock held.
func (r *InMemoryRepository) lookup(idOrSlug string) *board.Room {
	if room, ok := r.rooms[idOrSlug]; ok {
		return room
	}
	if id, ok := r.bySlug[idOrSlug]; ok {
		return r.rooms[id]
	}
	return nil
}
