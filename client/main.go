package main

import (
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

// 调试客户端：订阅一个房间的事件流并打印收到的事件名
func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	roomCode := flag.String("room", "", "room code to subscribe to")
	name := flag.String("name", "observer", "player name to identify as")
	flag.Parse()

	if *roomCode == "" {
		log.Fatal("-room is required")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{
		Scheme: "ws",
		Host:   *addr,
		Path:   "/ws/" + strings.ToUpper(*roomCode),
	}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	// 第一条消息是身份
	if err := c.WriteMessage(websocket.TextMessage, []byte(*name)); err != nil {
		log.Fatalf("Failed to send identity: %v", err)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("Event: %s", message)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
