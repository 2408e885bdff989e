// room/room.go
package room

import (
	"sync"

	"github.com/wfunc/findthespy/session"
)

// Registry 房间订阅表：房间码 -> 已连接会话。纯内存、进程生命周期，
// 作为依赖注入进广播层，而不是包级全局状态。
type Registry struct {
	rooms map[string]map[string]*session.Session
	mutex sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]*session.Session),
	}
}

// Subscribe 把会话挂到房间的订阅表上
func (r *Registry) Subscribe(code string, s *session.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	subscribers, exists := r.rooms[code]
	if !exists {
		subscribers = make(map[string]*session.Session)
		r.rooms[code] = subscribers
	}
	subscribers[s.ID] = s
	s.RoomCode = code
}

// Unsubscribe 摘除会话；房间没有订阅者时回收整个条目
func (r *Registry) Unsubscribe(code, sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	subscribers, exists := r.rooms[code]
	if !exists {
		return
	}
	delete(subscribers, sessionID)
	if len(subscribers) == 0 {
		delete(r.rooms, code)
	}
}

// Sessions 返回房间订阅者的线程安全副本
func (r *Registry) Sessions(code string) []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	subscribers := r.rooms[code]
	result := make([]*session.Session, 0, len(subscribers))
	for _, s := range subscribers {
		result = append(result, s)
	}
	return result
}

// Rooms 返回当前有订阅者的房间数
func (r *Registry) Rooms() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.rooms)
}
