package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relayAdapter "github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/adapter"
)

type fakeWS struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	// closeFrames counts close control frames written.
	closeFrames int
	// writing flags a write in progress; overlaps counts concurrent writers seen.
	writing  atomic.Bool
	overlaps atomic.Int32
	// writeDelay widens the window of each text write.
	writeDelay time.Duration
}

func (f *fakeWS) enter() func() {
	if !f.writing.CompareAndSwap(false, true) {
		f.overlaps.Add(1)
		return func() {}
	}
	return func() { f.writing.Store(false) }
}

func (f *fakeWS) SetWriteDeadline(time.Time) error {
	defer f.enter()()
	return nil
}

func (f *fakeWS) WriteMessage(messageType int, data []byte) error {
	defer f.enter()()
	if f.writeDelay > 0 {
		time.Sleep(f.writeDelay)
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeWS) WriteControl(messageType int, _ []byte, _ time.Time) error {
	defer f.enter()()
	if f.writeDelay > 0 {
		time.Sleep(f.writeDelay)
	}
	if messageType == websocket.CloseMessage {
		f.mu.Lock()
		f.closeFrames++
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeWS) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeWS) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed && f.closeFrames == 1
}

func (f *fakeWS) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	for i, b := range f.frames {
		out[i] = string(b)
	}
	return out
}

func newConn(profileID string) (*Connection, *fakeWS) {
	ws := &fakeWS{}
	return NewConnection(profileID, ws), ws
}

func eventually(t *testing.T, ws *fakeWS, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(ws.received()) == n }, time.Second, 5*time.Millisecond)
}

func TestAttachJoinsPrivateRoom(t *testing.T) {
	r := NewRouter(nil, zerolog.Nop())
	conn, ws := newConn("alice")
	r.Attach(conn)
	defer r.Close()

	assert.True(t, r.IsMember("alice", conn))
	assert.Equal(t, 1, r.Broadcast("alice", []byte("ping")))
	eventually(t, ws, 1)
}

func TestMultipleDevicesPerProfile(t *testing.T) {
	r := NewRouter(nil, zerolog.Nop())
	defer r.Close()
	phone, phoneWS := newConn("alice")
	laptop, laptopWS := newConn("alice")
	r.Attach(phone)
	r.Attach(laptop)

	assert.Equal(t, 2, r.Sessions("alice"))
	assert.Equal(t, 2, r.Broadcast("alice", []byte("n")))
	eventually(t, phoneWS, 1)
	eventually(t, laptopWS, 1)
	assert.False(t, phoneWS.closed)
}

func TestJoinIsIdempotentAndDetachClearsMemberships(t *testing.T) {
	r := NewRouter(nil, zerolog.Nop())
	defer r.Close()
	conn, _ := newConn("alice")
	r.Attach(conn)

	require.True(t, r.Join("alice_bob", conn))
	require.True(t, r.Join("alice_bob", conn))
	assert.Equal(t, 1, r.Members("alice_bob"))

	r.Detach(conn)
	assert.Equal(t, 0, r.Members("alice_bob"))
	assert.Equal(t, 0, r.Members("alice"))
	assert.Equal(t, 0, r.Sessions("alice"))
	assert.False(t, r.Join("alice_bob", conn), "detached connections cannot join")
}

func TestLeaveKeepsPrivateRoom(t *testing.T) {
	r := NewRouter(nil, zerolog.Nop())
	defer r.Close()
	conn, _ := newConn("alice")
	r.Attach(conn)
	r.Join("alice_bob", conn)

	r.Leave("alice_bob", conn)
	r.Leave("alice", conn)

	assert.False(t, r.IsMember("alice_bob", conn))
	assert.True(t, r.IsMember("alice", conn))
}

func TestEmitCrossesNodesThroughRelay(t *testing.T) {
	relay := relayAdapter.NewLocalRelay()
	nodeA := NewRouter(relay, zerolog.Nop())
	nodeB := NewRouter(relay, zerolog.Nop())
	defer nodeA.Close()
	defer nodeB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = nodeA.RunRelay(ctx) }()
	go func() { _ = nodeB.RunRelay(ctx) }()

	onA, wsA := newConn("alice")
	onB, wsB := newConn("bob")
	nodeA.Attach(onA)
	nodeB.Attach(onB)
	nodeA.Join("alice_bob", onA)
	nodeB.Join("alice_bob", onB)

	require.Eventually(t, func() bool { return relay.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	nodeA.Emit(ctx, "alice_bob", []byte("hello"))

	eventually(t, wsA, 1)
	eventually(t, wsB, 1)
	assert.Equal(t, []string{"hello"}, wsA.received(), "own echo must not be delivered twice")
}

func TestSlowConsumerIsClosed(t *testing.T) {
	conn, ws := newConn("alice")
	// write loop not started: the buffer fills up
	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, conn.Send([]byte("x")))
	}
	assert.ErrorIs(t, conn.Send([]byte("x")), ErrBufferExceeded)
	assert.ErrorIs(t, conn.Send([]byte("x")), ErrConnectionClosed)
	assert.False(t, ws.isClosed(), "the overflowing sender must not write to the socket")

	conn.Start()
	require.Eventually(t, ws.isClosed, time.Second, 5*time.Millisecond)
}

func TestCloseNeverRacesTheWriteLoop(t *testing.T) {
	conn, ws := newConn("alice")
	ws.writeDelay = time.Millisecond
	conn.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = conn.Send([]byte("x"))
		}
	}()
	time.Sleep(10 * time.Millisecond)
	conn.Close(websocket.CloseNormalClosure, "bye")
	conn.Close(websocket.CloseGoingAway, "again")
	wg.Wait()

	require.Eventually(t, ws.isClosed, time.Second, 5*time.Millisecond)
	assert.Zero(t, ws.overlaps.Load())
}

func TestBroadcastIsNotHeldUpByAStalledMember(t *testing.T) {
	r := NewRouter(nil, zerolog.Nop())
	defer r.Close()

	stalled, stalledWS := newConn("bob")
	stalledWS.writeDelay = time.Hour
	fast, fastWS := newConn("carol")
	r.Attach(stalled)
	r.Attach(fast)
	r.Join("room", stalled)
	r.Join("room", fast)

	// park bob's write loop on one frame, then fill his buffer
	require.NoError(t, stalled.Send([]byte("first")))
	require.Eventually(t, stalledWS.writing.Load, time.Second, time.Millisecond)
	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, stalled.Send([]byte("x")))
	}

	done := make(chan int)
	go func() { done <- r.Broadcast("room", []byte("hello")) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a stalled connection")
	}
	eventually(t, fastWS, 1)
	assert.ErrorIs(t, stalled.Send([]byte("x")), ErrConnectionClosed)
}
