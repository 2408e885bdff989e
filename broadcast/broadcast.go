// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/findthespy/logger"
	"github.com/wfunc/findthespy/room"
)

// Event 状态变更事件。事件不携带数据，客户端收到后重新拉取状态。
type Event string

const (
	EventGameStarted   Event = "game_started"
	EventRoundStarted  Event = "round_started"
	EventVotingStarted Event = "voting_started"
	EventRoundEnded    Event = "round_ended"
	EventGameEnded     Event = "game_ended"
)

// 广播接口
type Broadcaster interface {
	Publish(roomCode string, event Event)
}

// HubBroadcaster 基于订阅表的广播器。推送是尽力而为的：单个订阅者
// 发送失败只跳过该订阅者，绝不阻塞或回滚触发广播的状态变更。
type HubBroadcaster struct {
	registry *room.Registry
}

func NewHubBroadcaster(registry *room.Registry) *HubBroadcaster {
	return &HubBroadcaster{registry: registry}
}

func (b *HubBroadcaster) Publish(roomCode string, event Event) {
	for _, s := range b.registry.Sessions(roomCode) {
		if err := s.SendEvent(string(event)); err != nil {
			// 掉线的订阅者由心跳巡检摘除
			logger.Log.Debugf("Dropping event %s for session %s: %v", event, s.ID, err)
			continue
		}
	}
}
