// game/locks.go
package game

import "sync"

// RoomLocks 按房间码分发互斥锁，让"计票-判定-结算"在同一房间内
// 串行执行。这是投票结算恰好一次的第一道防线；round_results 上的
// (room_code, round) 唯一索引是第二道。
type RoomLocks struct {
	locks map[string]*sync.Mutex
	mutex sync.Mutex
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Get 返回该房间的互斥锁，首次访问时创建
func (l *RoomLocks) Get(code string) *sync.Mutex {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	mu, exists := l.locks[code]
	if !exists {
		mu = &sync.Mutex{}
		l.locks[code] = mu
	}
	return mu
}

// Forget 在房间销毁后释放对应的锁条目
func (l *RoomLocks) Forget(code string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.locks, code)
}
