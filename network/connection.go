// network/connection.go
package network

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection 客户端推送通道。事件只有名字没有负载，客户端收到
// 事件后自行重新拉取权威状态。
type Connection interface {
	SendEvent(name string) error
	ReadText() (string, error)
	Ping() error
	Close() error
	RemoteAddr() net.Addr
}

// WSConnection 基于 gorilla/websocket 的实现
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) SendEvent(name string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(name))
}

func (c *WSConnection) ReadText() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Ping 探测半开连接。gorilla 允许 WriteControl 与其他写并发。
func (c *WSConnection) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
