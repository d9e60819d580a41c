package messages

import (
	"fmt"

	"github.com/castillofj/touchline/pkg/board"
)

// Message types
const (
	MessageTypeSnapshot    = "snapshot"
	MessageTypePlayerMoved = "player_moved"
	MessageTypeMatchStatus = "match_status"
	MessageTypeTeamUpdated = "team_updated"
	MessageTypeUserLeft    = "user_left"
)

// Message represents one JSON frame on the room socket. Type discriminates
// which of the payload fields is set; unknown types are carried through
// as-is so consumers can ignore them.
type Message struct {
	Type     string            `json:"type"`
	Room     *board.Room       `json:"room,omitempty"`
	Player   *board.Player     `json:"player,omitempty"`
	Team     *board.Team       `json:"team,omitempty"`
	Status   board.MatchStatus `json:"status,omitempty"`
	ClientID string            `json:"client_id,omitempty"`
}

// NewSnapshot creates a snapshot message carrying a full room replacement.
func NewSnapshot(room *board.Room) *Message {
	return &Message{
		Type: MessageTypeSnapshot,
		Room: room,
	}
}

// NewPlayerMoved creates a player_moved message.
func NewPlayerMoved(player board.Player) *Message {
	return &Message{
		Type:   MessageTypePlayerMoved,
		Player: &player,
	}
}

// NewMatchStatus creates a match_status message.
func NewMatchStatus(status board.MatchStatus) *Message {
	return &Message{
		Type:   MessageTypeMatchStatus,
		Status: status,
	}
}

// NewTeamUpdated creates a team_updated message.
func NewTeamUpdated(team board.Team) *Message {
	return &Message{
		Type: MessageTypeTeamUpdated,
		Team: &team,
	}
}

// NewUserLeft creates a user_left message for the given client.
func NewUserLeft(clientID string) *Message {
	return &Message{
		Type:     MessageTypeUserLeft,
		ClientID: clientID,
	}
}

// Validate checks that the message carries the payload its type requires.
// Unknown types are valid; they carry whatever they carry.
func (m *Message) Validate() error {
	if m.Type == "" {
		return fmt.Errorf("message has no type")
	}
	switch m.Type {
	case MessageTypeSnapshot:
		if m.Room == nil {
			return fmt.Errorf("snapshot message has no room")
		}
	case MessageTypePlayerMoved:
		if m.Player == nil {
			return fmt.Errorf("player_moved message has no player")
		}
	case MessageTypeMatchStatus:
		if !m.Status.IsValid() {
			return fmt.Errorf("match_status message has invalid status %q", m.Status)
		}
	case MessageTypeTeamUpdated:
		if m.Team == nil {
			return fmt.Errorf("team_updated message has no team")
		}
	}
	return nil
}
