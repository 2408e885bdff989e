// game/errors.go
package game

import "errors"

// 错误定义。服务端按这些哨兵错误映射 HTTP 状态码。
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNoVotes          = errors.New("no votes cast")
	ErrNameTaken        = errors.New("player name already taken")
	ErrNameLength       = errors.New("name too short or too long")
	ErrRoundResolved    = errors.New("round already resolved")
	ErrCodeSpace        = errors.New("failed to generate unique room code")
)
