package client

import (
	"github.com/castillofj/touchline/pkg/board"
	"github.com/castillofj/touchline/pkg/messages"
	"github.com/rs/zerolog/log"
)

// Router classifies inbound messages by type and applies each one to the
// canonical store. Unknown message types are ignored so newer servers can
// talk to older clients.
type Router struct {
	store *board.Store
}

// NewRouter creates a router writing into the given store.
func NewRouter(store *board.Store) *Router {
	return &Router{
		store: store,
	}
}

// Route dispatches one inbound message to the matching store mutation.
func (r *Router) Route(msg *messages.Message) {
	switch msg.Type {
	case messages.MessageTypeSnapshot:
		if msg.Room == nil {
			log.Warn().Msg("snapshot message without room, ignoring")
			return
		}
		r.store.ApplySnapshot(msg.Room)
	case messages.MessageTypePlayerMoved:
		if msg.Player == nil {
			log.Warn().Msg("player_moved message without player, ignoring")
			return
		}
		r.store.ApplyPlayerUpdate(*msg.Player)
	case messages.MessageTypeTeamUpdated:
		if msg.Team == nil {
			log.Warn().Msg("team_updated message without team, ignoring")
			return
		}
		r.store.ApplyTeamUpdate(*msg.Team)
	case messages.MessageTypeMatchStatus:
		if !msg.Status.IsValid() {
			log.Warn().Str("status", string(msg.Status)).Msg("match_status message with invalid status, ignoring")
			return
		}
		r.store.ApplyMatchStatus(msg.Status)
	case messages.MessageTypeUserLeft:
		// No store effect; subscribers get the raw message.
	default:
		log.Trace().Str("type", msg.Type).Msg("ignoring unknown message type")
	}
}
