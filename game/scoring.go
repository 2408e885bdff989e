// game/scoring.go
package game

import (
	"errors"

	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/state"
)

// Scorer 结算一个回合：选出得票最多的玩家，按规则加分，写入
// 结算记录并把房间置为 ended。整个结算在单个事务内完成。
type Scorer struct {
	store persistence.Store
}

func NewScorer(store persistence.Store) *Scorer {
	return &Scorer{store: store}
}

// Resolve 结算指定回合。计分规则是非对称的：
//   - 出局者是卧底：本回合投中任意卧底的平民各 +1
//   - 出局者不是卧底：本回合零票的卧底各 +1
func (s *Scorer) Resolve(code string, round int) (eliminated string, wasMafia bool, err error) {
	err = s.store.Transaction(func(tx persistence.Store) error {
		votes, err := tx.ListVotes(code, round)
		if err != nil {
			return err
		}
		if len(votes) == 0 {
			return ErrNoVotes
		}

		eliminated = pluralityTarget(votes)

		target, err := tx.GetPlayer(code, eliminated)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		wasMafia = target.IsMafia

		players, err := tx.ListPlayers(code)
		if err != nil {
			return err
		}

		if err := tx.AddScores(code, roundWinners(players, votes, wasMafia)); err != nil {
			return err
		}
		if err := tx.InsertRoundResult(code, round, eliminated, wasMafia); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				return ErrRoundResolved
			}
			return err
		}
		return tx.SetRoomPhase(code, state.StatusEnded, state.PhaseNone)
	})
	if err != nil {
		return "", false, err
	}
	return eliminated, wasMafia, nil
}

// pluralityTarget 选出本回合得票最多的名字。平票时取名字序靠前者；
// 这只是一个稳定的实现序，不是公平的决胜规则。
func pluralityTarget(votes []models.Vote) string {
	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.VotedName]++
	}

	var best string
	bestCount := -1
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best = name
			bestCount = count
		}
	}
	return best
}

// roundWinners 按出局者身份返回本回合应加分的玩家名单
func roundWinners(players []models.Player, votes []models.Vote, eliminatedWasMafia bool) []string {
	byName := make(map[string]*models.Player, len(players))
	for i := range players {
		byName[players[i].Name] = &players[i]
	}

	var winners []string
	if eliminatedWasMafia {
		// 投中任意卧底的平民
		seen := make(map[string]bool)
		for _, v := range votes {
			voter, ok := byName[v.VoterName]
			if !ok || voter.IsMafia || seen[v.VoterName] {
				continue
			}
			if target, ok := byName[v.VotedName]; ok && target.IsMafia {
				winners = append(winners, v.VoterName)
				seen[v.VoterName] = true
			}
		}
		return winners
	}

	// 零票的卧底。哪怕没被投出，只要有人投过它一票就不得分。
	voted := make(map[string]bool)
	for _, v := range votes {
		voted[v.VotedName] = true
	}
	for _, p := range players {
		if p.IsMafia && !voted[p.Name] {
			winners = append(winners, p.Name)
		}
	}
	return winners
}
