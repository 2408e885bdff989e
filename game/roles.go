// game/roles.go
package game

import (
	"math/rand"

	"github.com/wfunc/findthespy/logger"
	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/words"
)

// RoleAssigner 为一个回合随机选出卧底并绑定秘密词
type RoleAssigner struct {
	store persistence.Store
	words words.Supplier
}

func NewRoleAssigner(store persistence.Store, supplier words.Supplier) *RoleAssigner {
	return &RoleAssigner{store: store, words: supplier}
}

// Assign 随机选出 mafiaCount 个卧底，向房间所有玩家写入本回合的
// 角色、词语和回合号。写入在单个事务内完成，不会出现部分玩家已
// 更新的中间态。取词失败时使用兜底词对，绝不因此让回合开不了局。
func (a *RoleAssigner) Assign(code string, players []models.Player, mafiaCount, round int) (string, string, error) {
	if mafiaCount < 0 || len(players) < mafiaCount {
		return "", "", ErrNotEnoughPlayers
	}

	civilian, spy, err := a.words.FetchPair()
	if err != nil {
		logger.Log.Warnf("Word supply failed for room %s, using fallback pair: %v", code, err)
		civilian, spy = words.FallbackCivilian, words.FallbackSpy
	}

	// 无放回随机抽取卧底
	spies := make(map[int64]bool, mafiaCount)
	for _, i := range rand.Perm(len(players))[:mafiaCount] {
		spies[players[i].ID] = true
	}

	assignments := make([]models.RoleAssignment, 0, len(players))
	for _, p := range players {
		word := civilian
		if spies[p.ID] {
			word = spy
		}
		assignments = append(assignments, models.RoleAssignment{
			PlayerID: p.ID,
			IsMafia:  spies[p.ID],
			Word:     word,
		})
	}

	if err := a.store.AssignRoles(code, round, assignments); err != nil {
		return "", "", err
	}
	return civilian, spy, nil
}
