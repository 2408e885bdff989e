// services/query_service.go
package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/wfunc/findthespy/game"
	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/persistence"
)

// QueryService 只读查询：房间状态、玩家词语、计分板、回合结果。
// 客户端收到广播事件后通过这些查询重新拉取权威状态。
type QueryService struct {
	store persistence.Store
}

func NewQueryService(store persistence.Store) *QueryService {
	return &QueryService{store: store}
}

// RoomStatus 返回房间当前的状态和阶段
func (s *QueryService) RoomStatus(code string) (*models.Room, error) {
	return s.store.GetRoom(normalize(code))
}

// IsHost 查询 name 是否为房主。房间不存在时视为否。
func (s *QueryService) IsHost(code, name string) (bool, error) {
	room, err := s.store.GetRoom(normalize(code))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return room.HostName == name, nil
}

// PlayerWord 返回玩家本回合的秘密词和身份
func (s *QueryService) PlayerWord(code, name string) (word string, isMafia bool, err error) {
	player, err := s.store.GetPlayer(normalize(code), name)
	if err != nil {
		return "", false, err
	}
	return player.Word, player.IsMafia, nil
}

// Players 返回房间玩家的公开信息（名字和分数）
func (s *QueryService) Players(code string) ([]models.PlayerScore, error) {
	players, err := s.store.ListPlayers(normalize(code))
	if err != nil {
		return nil, err
	}
	scores := make([]models.PlayerScore, 0, len(players))
	for _, p := range players {
		scores = append(scores, models.PlayerScore{Name: p.Name, Score: p.Score})
	}
	return scores, nil
}

// VoteCount 返回当前回合已投票的人数
func (s *QueryService) VoteCount(code string) (int, error) {
	code = normalize(code)
	round, err := game.ActiveRound(s.store, code)
	if err != nil {
		return 0, err
	}
	return s.store.CountDistinctVoters(code, round)
}

// RoundResults 返回最近一次结算回合的投票、出局者和全员身份。
// 尚无结算记录时 Eliminated/WasMafia 为空。
func (s *QueryService) RoundResults(code string) (*models.RoundSummary, error) {
	code = normalize(code)

	round, err := s.store.CurrentRound(code)
	if err != nil {
		return nil, err
	}
	if round == 0 {
		round = 1
	}

	votes, err := s.store.ListVotes(code, round)
	if err != nil {
		return nil, err
	}
	players, err := s.store.ListPlayers(code)
	if err != nil {
		return nil, err
	}

	summary := &models.RoundSummary{
		Votes:   make([]models.VoteCast, 0, len(votes)),
		Players: make([]models.PlayerResult, 0, len(players)),
	}
	for _, v := range votes {
		summary.Votes = append(summary.Votes, models.VoteCast{Voter: v.VoterName, Voted: v.VotedName})
	}
	for _, p := range players {
		summary.Players = append(summary.Players, models.PlayerResult{
			Name: p.Name, Score: p.Score, IsMafia: p.IsMafia,
		})
	}

	result, err := s.store.GetRoundResult(code, round)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return summary, nil
		}
		return nil, err
	}
	summary.Eliminated = &result.EliminatedPlayer
	summary.WasMafia = &result.WasMafia
	return summary, nil
}

// Leaderboard 返回按分数降序排列的计分板
func (s *QueryService) Leaderboard(code string) ([]models.PlayerScore, error) {
	scores, err := s.Players(code)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

func normalize(code string) string {
	return strings.ToUpper(code)
}
