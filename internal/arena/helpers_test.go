package arena

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tlau/rpsduel/internal/game"
	"github.com/tlau/rpsduel/internal/protocol"
)

const testWait = 2 * time.Second

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// shortTimings keeps scenario tests fast on the real clock.
func shortTimings() Timings {
	return Timings{
		MoveTimeout:      500 * time.Millisecond,
		LivecheckTimeout: 500 * time.Millisecond,
		EndTurnPause:     time.Millisecond,
		EndGamePause:     time.Millisecond,
		RetentionGrace:   time.Millisecond,
	}
}

func recvCommand(t *testing.T, p *game.Participant) game.Command {
	t.Helper()
	select {
	case cmd := <-p.Commands():
		return cmd
	case <-time.After(testWait):
		t.Fatalf("timed out waiting for command for %s", p)
		return game.Command{}
	}
}

// expectNoCommand asserts that nothing lands on the queue within a short
// window.
func expectNoCommand(t *testing.T, p *game.Participant) {
	t.Helper()
	select {
	case cmd := <-p.Commands():
		t.Fatalf("unexpected command %q for %s", cmd.Action, p)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeTransport is an in-memory session transport scripted by tests.
type fakeTransport struct {
	frames chan protocol.ClientFrame
	sent   chan protocol.ServerFrame

	mu      sync.Mutex
	pingErr error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		frames: make(chan protocol.ClientFrame, 16),
		sent:   make(chan protocol.ServerFrame, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) Frames() <-chan protocol.ClientFrame { return f.frames }

func (f *fakeTransport) Send(frame protocol.ServerFrame) error {
	// Drop rather than block once the test stops reading.
	select {
	case f.sent <- frame:
	default:
	}
	return nil
}

func (f *fakeTransport) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeTransport) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		close(f.frames)
	})
	return nil
}

func (f *fakeTransport) push(frame protocol.ClientFrame) {
	f.frames <- frame
}

func (f *fakeTransport) recv(t *testing.T) protocol.ServerFrame {
	t.Helper()
	select {
	case frame := <-f.sent:
		return frame
	case <-time.After(testWait):
		t.Fatal("timed out waiting for server frame")
		return nil
	}
}

func pairedParticipants() (*game.Participant, *game.Participant, *game.Game) {
	p1 := game.NewParticipant("Alice")
	p2 := game.NewParticipant("Bob")
	g := game.NewGame(p1, p2)
	p1.SetPairing(p2, g)
	p2.SetPairing(p1, g)
	return p1, p2, g
}
