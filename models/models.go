// models/models.go
package models

import (
	"time"

	"github.com/wfunc/findthespy/state"
)

// Room 房间数据模型
type Room struct {
	Code         string       `json:"code"`
	MafiaCount   int          `json:"mafia_count"`
	HostName     string       `json:"host_name"`
	Status       state.Status `json:"status"`
	CurrentPhase state.Phase  `json:"current_phase"`
}

// Player 玩家数据模型
type Player struct {
	ID         int64  `json:"id"`
	RoomCode   string `json:"room_code"`
	Name       string `json:"name"`
	IsMafia    bool   `json:"is_mafia"`
	Eliminated bool   `json:"eliminated"`
	Word       string `json:"word"`
	Score      int    `json:"score"`
	Round      int    `json:"round"`
}

// Vote 投票记录，每个玩家每回合至多一票
type Vote struct {
	RoomCode  string `json:"room_code"`
	Round     int    `json:"round"`
	VoterName string `json:"voter_name"`
	VotedName string `json:"voted_name"`
}

// RoundResult 回合结算记录（只追加）
type RoundResult struct {
	RoomCode         string    `json:"room_code"`
	Round            int       `json:"round"`
	EliminatedPlayer string    `json:"eliminated_player"`
	WasMafia         bool      `json:"was_mafia"`
	Timestamp        time.Time `json:"timestamp"`
}

// RoleAssignment is one player's role and word for a round.
type RoleAssignment struct {
	PlayerID int64  `json:"player_id"`
	IsMafia  bool   `json:"is_mafia"`
	Word     string `json:"word"`
}

// PlayerScore 玩家公开信息（名字和分数）
type PlayerScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerResult exposes the per-round role, shown once a round resolved.
type PlayerResult struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	IsMafia bool   `json:"is_mafia"`
}

// VoteCast is one voter/target pair in a round summary.
type VoteCast struct {
	Voter string `json:"voter"`
	Voted string `json:"voted"`
}

// RoundSummary 回合结果汇总
type RoundSummary struct {
	Votes      []VoteCast     `json:"votes"`
	Eliminated *string        `json:"eliminated"`
	WasMafia   *bool          `json:"was_mafia"`
	Players    []PlayerResult `json:"players"`
}
