// game/votes.go
package game

import (
	"errors"

	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/state"
)

// Tally 收集每回合的投票并在齐票时触发结算。
//
// 同一房间的"记票-数票-结算"整体持有房间锁，两张并发到达的最后
// 一票不可能都观察到齐票。结算会在同一临界区内把房间置为 ended，
// 回合结束后补投的票只会被记录，不会再次触发结算。
type Tally struct {
	store  persistence.Store
	scorer *Scorer
	locks  *RoomLocks
}

func NewTally(store persistence.Store, scorer *Scorer, locks *RoomLocks) *Tally {
	return &Tally{store: store, scorer: scorer, locks: locks}
}

// CastVote 记录 voter 在当前回合的选择，后投覆盖先投。当不同投票人
// 数达到房间总人数且房间处于对局中时结算本回合，返回 resolved = true。
// voted 不要求是房间里的有效玩家名。
func (t *Tally) CastVote(code, voter, voted string) (resolved bool, err error) {
	mu := t.locks.Get(code)
	mu.Lock()
	defer mu.Unlock()

	room, err := t.store.GetRoom(code)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, ErrRoomNotFound
		}
		return false, err
	}

	round, err := ActiveRound(t.store, code)
	if err != nil {
		return false, err
	}

	if err := t.store.UpsertVote(code, round, voter, voted); err != nil {
		return false, err
	}

	voters, err := t.store.CountDistinctVoters(code, round)
	if err != nil {
		return false, err
	}
	// 分母是房间总人数，不是未出局人数
	total, err := t.store.CountPlayers(code)
	if err != nil {
		return false, err
	}
	if voters < total || room.Status != state.StatusOngoing {
		return false, nil
	}

	if _, _, err := t.scorer.Resolve(code, round); err != nil {
		return false, err
	}
	return true, nil
}

// ActiveRound 推导当前进行中的回合号：已结算回合数 + 1。
// 第一回合没有任何结算记录，因此是 1。
func ActiveRound(store persistence.Store, code string) (int, error) {
	round, err := store.CurrentRound(code)
	if err != nil {
		return 0, err
	}
	return round + 1, nil
}
