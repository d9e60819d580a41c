package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/castillofj/touchline/pkg/board"
	"github.com/castillofj/touchline/pkg/messages"
	"github.com/castillofj/touchline/pkg/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type responseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

type dataResponse struct {
	Data interface{}  `json:"data"`
	Meta responseMeta `json:"meta"`
}

type createRoomRequest struct {
	CustomSlug string `json:"custom_slug"`
}

type updateTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type matchStatusResponse struct {
	MatchStatus board.MatchStatus `json:"match_status"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := dataResponse{
		Data: data,
		Meta: responseMeta{
			RequestID: uuid.New().String(),
			Timestamp: time.Now().UTC(),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.CustomSlug != "" {
		if _, err := s.repo.GetRoom(r.Context(), req.CustomSlug); err == nil {
			writeError(w, http.StatusBadRequest, "Slug already exists")
			return
		}
	}

	room := NewSeededRoom(req.CustomSlug)
	if err := s.repo.CreateRoom(r.Context(), room); err != nil {
		log.Error().Err(err).Msg("failed to create room")
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	log.Info().Str("room_id", room.RoomID).Str("slug", room.Slug).Msg("room created")
	writeData(w, http.StatusCreated, room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	room, err := s.repo.GetRoom(r.Context(), roomID)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room")
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}
	writeData(w, http.StatusOK, room)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	teamID := chi.URLParam(r, "teamID")

	var req updateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || len(req.Name) > 50 {
		writeError(w, http.StatusBadRequest, "team name must be 1-50 characters")
		return
	}
	if !colorPattern.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a #rrggbb value")
		return
	}

	room, err := s.repo.GetRoom(r.Context(), roomID)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room")
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}

	// Teams lock once the match leaves setup.
	if room.MatchStatus != board.MatchStatusSetup {
		writeError(w, http.StatusBadRequest, "Cannot edit team after match start")
		return
	}

	team, err := s.repo.UpdateTeam(r.Context(), room.RoomID, teamID, req.Name, req.Color)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Team not found")
			return
		}
		log.Error().Err(err).Str("team_id", teamID).Msg("failed to update team")
		writeError(w, http.StatusInternalServerError, "failed to update team")
		return
	}

	s.hub.Broadcast(room.RoomID, messages.NewTeamUpdated(*team), nil)
	writeData(w, http.StatusOK, team)
}

func (s *Server) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	s.handleMatchTransition(w, r, board.MatchStatusLive)
}

func (s *Server) handleEndMatch(w http.ResponseWriter, r *http.Request) {
	s.handleMatchTransition(w, r, board.MatchStatusExpired)
}

func (s *Server) handleMatchTransition(w http.ResponseWriter, r *http.Request, status board.MatchStatus) {
	roomID := chi.URLParam(r, "roomID")
	room, err := s.repo.GetRoom(r.Context(), roomID)
	if err != nil {
		if repositories.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to get room")
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}

	now := time.Now().UTC()
	if room.MatchStatus == status {
		// Idempotent: repeating a transition is not an error.
		writeJSON(w, http.StatusOK, matchStatusResponse{MatchStatus: status, StartedAt: startedAt(status, now)})
		return
	}

	if _, err := s.repo.SetMatchStatus(r.Context(), room.RoomID, status); err != nil {
		log.Error().Err(err).Str("room_id", room.RoomID).Msg("failed to update match status")
		writeError(w, http.StatusInternalServerError, "failed to update match status")
		return
	}

	log.Info().Str("room_id", room.RoomID).Str("status", string(status)).Msg("match status changed")
	s.hub.Broadcast(room.RoomID, messages.NewMatchStatus(status), nil)
	writeJSON(w, http.StatusOK, matchStatusResponse{MatchStatus: status, StartedAt: startedAt(status, now)})
}

func startedAt(status board.MatchStatus, now time.Time) *time.Time {
	if status == board.MatchStatusLive {
		return &now
	}
	return nil
}
