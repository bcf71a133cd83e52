package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"crawld/internal/model"
)

// startTestServer runs a Server on an ephemeral port and returns it
// with its bound address. Shutdown happens via t.Cleanup.
func startTestServer(t *testing.T) *Server {
	t.Helper()

	srv := New("127.0.0.1:0", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
	})

	waitForAddr(t, srv)
	return srv
}

func waitForAddr(t *testing.T, srv *Server) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Addr() != "" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("server never bound")
}

func TestServerReceivesCommands(t *testing.T) {
	t.Parallel()

	srv := startTestServer(t)
	client := NewClient(srv.Addr())
	ctx := context.Background()

	sent := []model.Command{
		model.StartCommand("http://site.com"),
		model.StopCommand("http://site.com"),
		model.ListCommand(),
	}
	for _, cmd := range sent {
		if err := client.Send(ctx, cmd); err != nil {
			t.Fatalf("Send(%v) failed: %v", cmd, err)
		}
	}

	// One message per connection; ordering across connections is not
	// guaranteed, so collect and compare as a set.
	got := make(map[string]model.Command)
	for range sent {
		select {
		case cmd := <-srv.Commands():
			got[cmd.String()] = cmd
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out, received %d of %d commands", len(got), len(sent))
		}
	}

	for _, want := range sent {
		cmd, ok := got[want.String()]
		if !ok {
			t.Errorf("command %v never arrived", want)
			continue
		}
		if cmd != want {
			t.Errorf("received %+v, want %+v", cmd, want)
		}
	}
}

func TestServerDropsMalformedMessages(t *testing.T) {
	t.Parallel()

	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if _, err := conn.Write([]byte("not json at all")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	conn.Close()

	// A valid command sent afterwards still arrives, proving the
	// malformed one was dropped without wedging the listener.
	if err := NewClient(srv.Addr()).Send(context.Background(), model.ListCommand()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case cmd := <-srv.Commands():
		if cmd.Kind != model.CommandList {
			t.Errorf("received %+v, want the list command", cmd)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("valid command never arrived")
	}
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("hands each command to the handler", func(t *testing.T) {
		t.Parallel()

		srv := startTestServer(t)
		ctx := context.Background()

		var mu sync.Mutex
		handled := make(map[model.CommandKind]int)
		dispatchDone := make(chan struct{})
		go func() {
			srv.Dispatch(ctx, func(_ context.Context, cmd model.Command) error {
				mu.Lock()
				handled[cmd.Kind]++
				mu.Unlock()
				return nil
			})
			close(dispatchDone)
		}()

		client := NewClient(srv.Addr())
		for _, cmd := range []model.Command{
			model.StartCommand("http://a.com"),
			model.ListCommand(),
		} {
			if err := client.Send(ctx, cmd); err != nil {
				t.Fatalf("Send failed: %v", err)
			}
		}

		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			mu.Lock()
			n := handled[model.CommandStart] + handled[model.CommandList]
			mu.Unlock()
			if n == 2 {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatalf("handler saw %v, want both commands", handled)
	})

	t.Run("returns when the channel closes", func(t *testing.T) {
		t.Parallel()

		srv := New("127.0.0.1:0", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

		ctx, cancel := context.WithCancel(context.Background())
		serveDone := make(chan error, 1)
		go func() {
			serveDone <- srv.ListenAndServe(ctx)
		}()
		waitForAddr(t, srv)

		dispatchDone := make(chan struct{})
		go func() {
			srv.Dispatch(ctx, func(context.Context, model.Command) error { return nil })
			close(dispatchDone)
		}()

		cancel()
		if err := <-serveDone; err != nil {
			t.Fatalf("ListenAndServe returned %v", err)
		}

		select {
		case <-dispatchDone:
		case <-time.After(3 * time.Second):
			t.Fatal("dispatch did not exit after channel close")
		}
	})
}

func TestClientSendFailsWithoutDaemon(t *testing.T) {
	t.Parallel()

	client := NewClient("127.0.0.1:1")
	if err := client.Send(context.Background(), model.ListCommand()); err == nil {
		t.Error("Send() to closed port should fail")
	}
}

func TestClientSendRejectsInvalidCommand(t *testing.T) {
	t.Parallel()

	client := NewClient("127.0.0.1:1")
	err := client.Send(context.Background(), model.Command{Kind: model.CommandStart})
	if err == nil {
		t.Error("Send() with missing URL should fail before dialing")
	}
}
