package broadcast

import (
	"errors"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/wfunc/findthespy/logger"
	"github.com/wfunc/findthespy/room"
	"github.com/wfunc/findthespy/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// fakeConn records delivered events and optionally fails every send.
type fakeConn struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (c *fakeConn) SendEvent(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, name)
	return nil
}

func (c *fakeConn) ReadText() (string, error) { return "", nil }
func (c *fakeConn) Ping() error               { return nil }
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) RemoteAddr() net.Addr      { return nil }

func (c *fakeConn) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func TestHubBroadcaster_Publish(t *testing.T) {
	registry := room.NewRegistry()
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	registry.Subscribe("ABCDEF", session.NewSession("session-1", conn1))
	registry.Subscribe("ABCDEF", session.NewSession("session-2", conn2))

	NewHubBroadcaster(registry).Publish("ABCDEF", EventRoundStarted)

	for _, conn := range []*fakeConn{conn1, conn2} {
		got := conn.events()
		if len(got) != 1 || got[0] != string(EventRoundStarted) {
			t.Errorf("Expected round_started delivered, got %v", got)
		}
	}
}

func TestHubBroadcaster_RoomIsolation(t *testing.T) {
	registry := room.NewRegistry()
	inRoom := &fakeConn{}
	elsewhere := &fakeConn{}
	registry.Subscribe("ABCDEF", session.NewSession("session-1", inRoom))
	registry.Subscribe("GHIJKL", session.NewSession("session-2", elsewhere))

	NewHubBroadcaster(registry).Publish("ABCDEF", EventVotingStarted)

	if len(inRoom.events()) != 1 {
		t.Error("Subscriber in the room should receive the event")
	}
	if len(elsewhere.events()) != 0 {
		t.Error("Subscriber in another room should not receive the event")
	}
}

// A dead subscriber must not stop delivery to the rest of the room.
func TestHubBroadcaster_SkipsFailingSubscriber(t *testing.T) {
	registry := room.NewRegistry()
	broken := &fakeConn{sendErr: errors.New("broken pipe")}
	healthy := &fakeConn{}
	registry.Subscribe("ABCDEF", session.NewSession("session-1", broken))
	registry.Subscribe("ABCDEF", session.NewSession("session-2", healthy))

	NewHubBroadcaster(registry).Publish("ABCDEF", EventRoundEnded)

	got := healthy.events()
	if len(got) != 1 || got[0] != string(EventRoundEnded) {
		t.Errorf("Healthy subscriber should still receive the event, got %v", got)
	}
}

func TestHubBroadcaster_EmptyRoom(t *testing.T) {
	registry := room.NewRegistry()

	// must not panic with no subscribers
	NewHubBroadcaster(registry).Publish("NOSUCH", EventGameEnded)
}
