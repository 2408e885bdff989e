package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wfunc/findthespy/game"
	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/state"
)

type createRoomRequest struct {
	MafiaCount int    `json:"mafia_count"`
	Name       string `json:"name"`
}

type joinRoomRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

type hostActionRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

type voteRequest struct {
	RoomCode  string `json:"room_code"`
	VoterName string `json:"voter_name"`
	VotedName string `json:"voted_name"`
}

type endRoundRequest struct {
	RoomCode string `json:"room_code"`
}

func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !decode(w, r, &req) {
		return
	}

	code, err := s.coordinator.CreateRoom(req.MafiaCount, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.monitor.IncRoomsCreated()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_code": code,
		"is_host":   true,
	})
}

func (s *GameServer) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.coordinator.JoinRoom(req.RoomCode, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s joined room %s", req.Name, req.RoomCode),
	})
}

func (s *GameServer) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req hostActionRequest
	if !decode(w, r, &req) {
		return
	}

	round, err := s.coordinator.StartRound(req.RoomCode, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Round started",
		"round":   round,
	})
}

func (s *GameServer) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	var req hostActionRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.coordinator.StartVoting(req.RoomCode, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Voting phase started",
	})
}

func (s *GameServer) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decode(w, r, &req) {
		return
	}

	start := time.Now()
	resolved, err := s.coordinator.CastVote(req.RoomCode, req.VoterName, req.VotedName)
	s.monitor.ObserveCommandLatency(time.Since(start))
	if err != nil {
		writeError(w, err)
		return
	}
	s.monitor.IncVotesReceived()
	if resolved {
		s.monitor.IncRoundsResolved()
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s voted for %s", req.VoterName, req.VotedName),
	})
}

func (s *GameServer) handleEndRound(w http.ResponseWriter, r *http.Request) {
	var req endRoundRequest
	if !decode(w, r, &req) {
		return
	}

	eliminated, _, err := s.coordinator.EndRound(req.RoomCode)
	if err != nil {
		writeError(w, err)
		return
	}
	s.monitor.IncRoundsResolved()

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s was eliminated. Game ended!", eliminated),
	})
}

func (s *GameServer) handleNextRound(w http.ResponseWriter, r *http.Request) {
	var req hostActionRequest
	if !decode(w, r, &req) {
		return
	}

	round, err := s.coordinator.NextRound(req.RoomCode, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Round %d started", round),
		"round":   round,
	})
}

func (s *GameServer) handleEndGame(w http.ResponseWriter, r *http.Request) {
	var req hostActionRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.coordinator.EndGame(req.RoomCode, req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Game ended and cleaned up",
	})
}

func (s *GameServer) handleIsHost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	isHost, err := s.queries.IsHost(vars["room_code"], vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_host": isHost})
}

func (s *GameServer) handlePlayerWord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	word, isMafia, err := s.queries.PlayerWord(vars["room_code"], vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"word":     word,
		"is_mafia": isMafia,
	})
}

func (s *GameServer) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.queries.Players(mux.Vars(r)["room_code"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

func (s *GameServer) handleVoteCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.queries.VoteCount(r.URL.Query().Get("room_code"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *GameServer) handleRoundResults(w http.ResponseWriter, r *http.Request) {
	summary, err := s.queries.RoundResults(mux.Vars(r)["room_code"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *GameServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := s.queries.Leaderboard(mux.Vars(r)["room_code"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": leaderboard})
}

func (s *GameServer) handleRoomStatus(w http.ResponseWriter, r *http.Request) {
	room, err := s.queries.RoomStatus(mux.Vars(r)["room_code"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":        string(room.Status),
		"current_phase": string(room.CurrentPhase),
	})
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound),
		errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, game.ErrNameTaken),
		errors.Is(err, game.ErrRoundResolved):
		return http.StatusConflict
	case errors.Is(err, state.ErrTransitionNotAllowed),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrNoVotes),
		errors.Is(err, game.ErrNameLength):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
