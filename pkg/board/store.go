package board

import "sync"

// Store holds the canonical client-side copy of the shared room state.
// It is mutated by the message router for server events and by local edit
// call sites for optimistic updates; both paths go through the same methods.
// All methods are safe for concurrent use and every mutation is applied
// atomically, so readers never observe a half-applied update.
type Store struct {
	lock        sync.RWMutex
	room        *Room
	matchStatus MatchStatus
}

// NewStore creates an empty store. The room stays nil until the first
// snapshot is applied.
func NewStore() *Store {
	return &Store{
		matchStatus: MatchStatusSetup,
	}
}

// Room returns a deep copy of the current room, or nil if no room is loaded.
func (s *Store) Room() *Room {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.room.Copy()
}

// MatchStatus returns the current match status.
func (s *Store) MatchStatus() MatchStatus {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.matchStatus
}

// Version returns the room version from the last applied snapshot,
// or 0 if no room is loaded.
func (s *Store) Version() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.room == nil {
		return 0
	}
	return s.room.Version
}

// ApplySnapshot replaces the entire held room with the given one. It never
// merges; any prior room state for a different or same room is discarded.
func (s *Store) ApplySnapshot(room *Room) {
	if room == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.room = room.Copy()
	s.matchStatus = room.MatchStatus
}

// ApplyPlayerUpdate upserts the player into its owning team: an existing
// player with the same ID is replaced wholesale, otherwise the player is
// appended. The update is a no-op if no room is loaded or the owning team
// is not part of the current room, since the snapshot that establishes the
// team may simply not have arrived yet.
func (s *Store) ApplyPlayerUpdate(player Player) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.room == nil {
		return
	}
	team := s.room.Team(player.TeamID)
	if team == nil {
		return
	}
	for i := range team.Players {
		if team.Players[i].PlayerID == player.PlayerID {
			team.Players[i] = player
			return
		}
	}
	team.Players = append(team.Players, player)
}

// ApplyTeamUpdate replaces the team with the matching ID within the current
// room. No-op if no room is loaded or the team is unknown.
func (s *Store) ApplyTeamUpdate(team Team) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.room == nil {
		return
	}
	for i := range s.room.Teams {
		if s.room.Teams[i].TeamID == team.TeamID {
			s.room.Teams[i] = team
			s.room.Teams[i].Players = make([]Player, len(team.Players))
			copy(s.room.Teams[i].Players, team.Players)
			return
		}
	}
}

// ApplyMatchStatus updates both the top-level status and the embedded
// room's copy of it. No-op if no room is loaded.
func (s *Store) ApplyMatchStatus(status MatchStatus) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.room == nil {
		return
	}
	s.matchStatus = status
	s.room.MatchStatus = status
}

// Clear drops the held room, e.g. when the user navigates away or the
// connection target changes to a different room.
func (s *Store) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.room = nil
	s.matchStatus = MatchStatusSetup
}
