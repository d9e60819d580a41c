package server

import (
	"net/http"

	"github.com/castillofj/touchline/pkg/messages"
	"github.com/castillofj/touchline/pkg/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	clientID := chi.URLParam(r, "clientID")

	room, err := s.repo.GetRoom(r.Context(), roomID)
	if err != nil {
		if repositories.IsNotFound(err) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room")
		http.Error(w, "failed to get room", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Debug().Err(err).Msg("failed to accept websocket")
		return
	}

	client := &RoomClient{
		clientID: clientID,
		conn:     conn,
		send:     make(chan []byte, clientSendBufferSize),
	}
	s.hub.add(room.RoomID, client)
	go client.writeLoop(r.Context())

	defer func() {
		s.hub.remove(room.RoomID, client)
		s.hub.Broadcast(room.RoomID, messages.NewUserLeft(clientID), nil)
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				log.Debug().Err(err).Str("client_id", clientID).Msg("read error")
			}
			return
		}

		msg, err := messages.DeserializeMessage(data)
		if err != nil {
			log.Warn().Err(err).Str("client_id", clientID).Msg("dropping malformed message")
			continue
		}

		if msg.Type == messages.MessageTypePlayerMoved && msg.Player != nil {
			if err := s.repo.SavePlayerPosition(r.Context(), *msg.Player); err != nil {
				log.Warn().Err(err).Str("player_id", msg.Player.PlayerID).Msg("failed to save player position")
			}
		}

		// Re-broadcast to everyone else in the room; the sender already
		// applied its own edit optimistically.
		s.hub.Broadcast(room.RoomID, msg, client)
	}
}
