// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/state"
)

// 错误定义
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store 数据库接口：rooms/players/votes/round_results 的事务化访问层
type Store interface {
	// Rooms
	CreateRoom(code string, mafiaCount int, hostName string) error
	GetRoom(code string) (*models.Room, error)
	RoomExists(code string) (bool, error)
	SetRoomPhase(code string, status state.Status, phase state.Phase) error

	// Players
	AddPlayer(code, name string) error
	GetPlayer(code, name string) (*models.Player, error)
	ListPlayers(code string) ([]models.Player, error)
	CountPlayers(code string) (int, error)
	AssignRoles(code string, round int, assignments []models.RoleAssignment) error
	AddScores(code string, names []string) error

	// Votes
	UpsertVote(code string, round int, voter, voted string) error
	CountDistinctVoters(code string, round int) (int, error)
	ListVotes(code string, round int) ([]models.Vote, error)
	ClearVotes(code string) error

	// Round results. CurrentRound returns the highest resolved round
	// number for the room, 0 when no round resolved yet.
	CurrentRound(code string) (int, error)
	InsertRoundResult(code string, round int, eliminated string, wasMafia bool) error
	GetRoundResult(code string, round int) (*models.RoundResult, error)

	// DeleteRoom removes the room and all dependent rows.
	DeleteRoom(code string) error

	// Transaction runs fn against a transaction-scoped Store. Any error
	// rolls the whole unit back.
	Transaction(fn func(tx Store) error) error
	Close() error
}
