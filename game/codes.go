// game/codes.go
package game

import (
	"math/rand"

	"github.com/wfunc/findthespy/persistence"
)

const (
	codeLength   = 6
	codeAttempts = 10
)

// CodeGenerator 生成人类可读的唯一房间码（6位大写字母）
type CodeGenerator struct {
	store persistence.Store
}

func NewCodeGenerator(store persistence.Store) *CodeGenerator {
	return &CodeGenerator{store: store}
}

// Generate 随机生成房间码并查重，超过尝试上限返回 ErrCodeSpace。
// 这里只做只读查重；最终以插入时的唯一约束为准（见 Coordinator.CreateRoom）。
func (g *CodeGenerator) Generate() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := randomCode()
		exists, err := g.store.RoomExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpace
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = byte('A' + rand.Intn(26))
	}
	return string(b)
}
