// game/coordinator.go
package game

import (
	"errors"
	"strings"

	"github.com/wfunc/findthespy/broadcast"
	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/state"
	"github.com/wfunc/findthespy/words"
)

const (
	minNameLength = 1
	maxNameLength = 30
)

// Coordinator 房间命令入口：建房、加入、开局、进入投票、投票、
// 结算、下一回合、结束游戏。每个状态变更都经过阶段状态机校验，
// 变更成功后向房间订阅者广播对应事件。
type Coordinator struct {
	store   persistence.Store
	codes   *CodeGenerator
	roles   *RoleAssigner
	tally   *Tally
	scorer  *Scorer
	machine *state.Machine
	locks   *RoomLocks
	events  broadcast.Broadcaster
}

func NewCoordinator(store persistence.Store, supplier words.Supplier, events broadcast.Broadcaster) *Coordinator {
	locks := NewRoomLocks()
	scorer := NewScorer(store)
	return &Coordinator{
		store:   store,
		codes:   NewCodeGenerator(store),
		roles:   NewRoleAssigner(store, supplier),
		tally:   NewTally(store, scorer, locks),
		scorer:  scorer,
		machine: state.NewMachine(),
		locks:   locks,
		events:  events,
	}
}

// CreateRoom 生成唯一房间码并建房，建房者成为第一个玩家和房主。
// 查重和插入之间存在间隙，插入撞上唯一约束时重新生成房间码。
func (c *Coordinator) CreateRoom(mafiaCount int, hostName string) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := c.codes.Generate()
		if err != nil {
			return "", err
		}

		err = c.store.Transaction(func(tx persistence.Store) error {
			if err := tx.CreateRoom(code, mafiaCount, hostName); err != nil {
				return err
			}
			return tx.AddPlayer(code, hostName)
		})
		if errors.Is(err, persistence.ErrDuplicate) {
			continue
		}
		if err != nil {
			return "", err
		}

		c.events.Publish(code, broadcast.EventGameStarted)
		return code, nil
	}
	return "", ErrCodeSpace
}

// JoinRoom 以唯一的展示名加入房间
func (c *Coordinator) JoinRoom(code, name string) error {
	code = normalizeCode(code)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return ErrNameLength
	}
	if _, err := c.room(code); err != nil {
		return err
	}

	if err := c.store.AddPlayer(code, name); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

// StartRound 房主开始一个回合。只允许从 waiting 或 ended 进入。
func (c *Coordinator) StartRound(code, name string) (int, error) {
	code = normalizeCode(code)
	room, err := c.hostRoom(code, name)
	if err != nil {
		return 0, err
	}
	if err := c.machine.Guard(step(room), state.StepDiscussion); err != nil {
		return 0, err
	}
	return c.beginRound(code, room)
}

// NextRound 房主在回合结束后开启下一回合，回合号加一，清空旧票，
// 对全部玩家（包括此前出局者）重新分配角色和词语。
func (c *Coordinator) NextRound(code, name string) (int, error) {
	code = normalizeCode(code)
	room, err := c.hostRoom(code, name)
	if err != nil {
		return 0, err
	}
	if room.Status != state.StatusEnded {
		return 0, state.ErrTransitionNotAllowed
	}
	return c.beginRound(code, room)
}

func (c *Coordinator) beginRound(code string, room *models.Room) (int, error) {
	// 持房间锁，避免与并发投票交错
	mu := c.locks.Get(code)
	mu.Lock()
	defer mu.Unlock()

	round, err := ActiveRound(c.store, code)
	if err != nil {
		return 0, err
	}

	players, err := c.store.ListPlayers(code)
	if err != nil {
		return 0, err
	}
	if len(players) < room.MafiaCount {
		return 0, ErrNotEnoughPlayers
	}

	if _, _, err := c.roles.Assign(code, players, room.MafiaCount, round); err != nil {
		return 0, err
	}
	if err := c.store.ClearVotes(code); err != nil {
		return 0, err
	}
	if err := c.store.SetRoomPhase(code, state.StatusOngoing, state.PhaseDiscussion); err != nil {
		return 0, err
	}

	c.events.Publish(code, broadcast.EventRoundStarted)
	return round, nil
}

// StartVoting 房主把房间从讨论阶段切到投票阶段
func (c *Coordinator) StartVoting(code, name string) error {
	code = normalizeCode(code)
	room, err := c.hostRoom(code, name)
	if err != nil {
		return err
	}
	if err := c.machine.Guard(step(room), state.StepVoting); err != nil {
		return err
	}
	if err := c.store.SetRoomPhase(code, state.StatusOngoing, state.PhaseVoting); err != nil {
		return err
	}

	c.events.Publish(code, broadcast.EventVotingStarted)
	return nil
}

// CastVote 投票；齐票时自动结算并广播回合结束
func (c *Coordinator) CastVote(code, voter, voted string) (resolved bool, err error) {
	code = normalizeCode(code)
	resolved, err = c.tally.CastVote(code, voter, voted)
	if err != nil {
		return false, err
	}
	if resolved {
		c.events.Publish(code, broadcast.EventRoundEnded)
	}
	return resolved, nil
}

// EndRound 手动结算当前回合（不要求房主，与齐票自动结算等价）
func (c *Coordinator) EndRound(code string) (eliminated string, wasMafia bool, err error) {
	code = normalizeCode(code)

	mu := c.locks.Get(code)
	mu.Lock()
	defer mu.Unlock()

	room, err := c.room(code)
	if err != nil {
		return "", false, err
	}
	if room.Status == state.StatusEnded {
		return "", false, ErrRoundResolved
	}

	round, err := ActiveRound(c.store, code)
	if err != nil {
		return "", false, err
	}
	eliminated, wasMafia, err = c.scorer.Resolve(code, round)
	if err != nil {
		return "", false, err
	}

	c.events.Publish(code, broadcast.EventRoundEnded)
	return eliminated, wasMafia, nil
}

// EndGame 房主结束游戏：级联删除投票、结算、玩家和房间本身
func (c *Coordinator) EndGame(code, name string) error {
	code = normalizeCode(code)
	if _, err := c.hostRoom(code, name); err != nil {
		return err
	}
	if err := c.store.DeleteRoom(code); err != nil {
		return err
	}
	c.locks.Forget(code)

	c.events.Publish(code, broadcast.EventGameEnded)
	return nil
}

// --- helpers ---

func (c *Coordinator) room(code string) (*models.Room, error) {
	room, err := c.store.GetRoom(code)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (c *Coordinator) hostRoom(code, name string) (*models.Room, error) {
	room, err := c.room(code)
	if err != nil {
		return nil, err
	}
	if room.HostName != name {
		return nil, ErrNotHost
	}
	return room, nil
}

func step(room *models.Room) state.Step {
	return state.Step{Status: room.Status, Phase: room.CurrentPhase}
}

func normalizeCode(code string) string {
	return strings.ToUpper(code)
}
