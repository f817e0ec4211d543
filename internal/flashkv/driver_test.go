package flashkv_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flashkv/flashload/internal/flashkv"
)

// fakeServer answers each connection with a fixed response line and records
// the commands it received.
type fakeServer struct {
	listener net.Listener
	response string
	delay    time.Duration

	mu       sync.Mutex
	received []string
}

func newFakeServer(t *testing.T, response string) *fakeServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{listener: listener, response: response}
	go s.serve()
	t.Cleanup(func() { listener.Close() })
	return s
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go func(conn net.Conn) {
			defer conn.Close()
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil {
				return
			}
			s.mu.Lock()
			s.received = append(s.received, line)
			s.mu.Unlock()
			if s.delay > 0 {
				time.Sleep(s.delay)
			}
			conn.Write([]byte(s.response))
		}(conn)
	}
}

func (s *fakeServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

func (s *fakeServer) addr() string { return s.listener.Addr().String() }

func newDriver(t *testing.T, cfg flashkv.Config) *flashkv.Driver {
	t.Helper()
	driver, err := flashkv.NewDriver(cfg)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return driver
}

func TestDriverClassifiesOK(t *testing.T) {
	server := newFakeServer(t, "+OK\r\n")
	driver := newDriver(t, flashkv.Config{
		Address:  server.addr(),
		Commands: []flashkv.Command{{Verb: flashkv.VerbPing}},
		Timeout:  2 * time.Second,
	})

	outcome := driver.Execute(context.Background())
	if !outcome.Success || outcome.Status != flashkv.StatusOK {
		t.Fatalf("outcome = %+v, want OK success", outcome)
	}
	if outcome.Error != "" {
		t.Fatalf("unexpected error text %q", outcome.Error)
	}
}

func TestDriverClassifiesNotFoundAsSuccess(t *testing.T) {
	for _, response := range []string{"(nil)\r\n", "NOT FOUND\r\n", "not found\r\n", "nil\r\n"} {
		server := newFakeServer(t, response)
		driver := newDriver(t, flashkv.Config{
			Address:  server.addr(),
			Commands: []flashkv.Command{{Verb: flashkv.VerbGet, Key: "absent"}},
			Timeout:  2 * time.Second,
		})

		outcome := driver.Execute(context.Background())
		if !outcome.Success || outcome.Status != flashkv.StatusNotFound {
			t.Fatalf("response %q: outcome = %+v, want NOT_FOUND success", response, outcome)
		}
	}
}

func TestDriverClassifiesErrorResponses(t *testing.T) {
	for _, response := range []string{"-ERR unknown command\r\n", "-wrongtype\r\n", "ERROR boom\r\n", "err lowercase\r\n"} {
		server := newFakeServer(t, response)
		driver := newDriver(t, flashkv.Config{
			Address:  server.addr(),
			Commands: []flashkv.Command{{Verb: flashkv.VerbGet, Key: "k"}},
			Timeout:  2 * time.Second,
		})

		outcome := driver.Execute(context.Background())
		if outcome.Success || outcome.Status != flashkv.StatusError {
			t.Fatalf("response %q: outcome = %+v, want ERROR failure", response, outcome)
		}
		if outcome.Error == "" {
			t.Fatalf("response %q: error text missing", response)
		}
	}
}

func TestDriverConnectionRefused(t *testing.T) {
	// Grab a port and close it so nothing is listening.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	driver := newDriver(t, flashkv.Config{
		Address:  addr,
		Commands: []flashkv.Command{{Verb: flashkv.VerbPing}},
		Timeout:  2 * time.Second,
	})

	outcome := driver.Execute(context.Background())
	if outcome.Success || outcome.Status != flashkv.StatusConnectionError {
		t.Fatalf("outcome = %+v, want CONNECTION_ERROR failure", outcome)
	}
	if outcome.Error == "" {
		t.Fatal("expected underlying dial error text")
	}
}

func TestDriverTimeout(t *testing.T) {
	server := newFakeServer(t, "+OK\r\n")
	server.delay = 500 * time.Millisecond

	driver := newDriver(t, flashkv.Config{
		Address:  server.addr(),
		Commands: []flashkv.Command{{Verb: flashkv.VerbPing}},
		Timeout:  50 * time.Millisecond,
	})

	outcome := driver.Execute(context.Background())
	if outcome.Success || outcome.Status != flashkv.StatusTimeout {
		t.Fatalf("outcome = %+v, want TIMEOUT failure", outcome)
	}
	if outcome.Error != "request timed out" {
		t.Fatalf("error text = %q", outcome.Error)
	}
}

func TestDriverCyclesThroughCommands(t *testing.T) {
	server := newFakeServer(t, "+OK\r\n")
	driver := newDriver(t, flashkv.Config{
		Address: server.addr(),
		Commands: []flashkv.Command{
			{Verb: flashkv.VerbPing},
			{Verb: flashkv.VerbGet, Key: "alpha"},
		},
		Timeout: 2 * time.Second,
	})

	for i := 0; i < 4; i++ {
		if outcome := driver.Execute(context.Background()); !outcome.Success {
			t.Fatalf("request %d failed: %+v", i, outcome)
		}
	}

	got := server.commands()
	if len(got) != 4 {
		t.Fatalf("server saw %d commands, want 4", len(got))
	}
	want := []string{"PING\r\n", "GET alpha\r\n", "PING\r\n", "GET alpha\r\n"}
	for i, cmd := range got {
		if cmd != want[i] {
			t.Fatalf("command %d = %q, want %q", i, cmd, want[i])
		}
	}
}

func TestDriverRandomKeysOnWire(t *testing.T) {
	server := newFakeServer(t, "+OK\r\n")
	driver := newDriver(t, flashkv.Config{
		Address:    server.addr(),
		Commands:   []flashkv.Command{{Verb: flashkv.VerbGet, Key: "static"}},
		RandomKeys: true,
		KeyPrefix:  "bench",
		KeyRange:   50,
		Timeout:    2 * time.Second,
	})

	driver.Execute(context.Background())
	got := server.commands()
	if len(got) != 1 {
		t.Fatalf("server saw %d commands, want 1", len(got))
	}
	if !strings.HasPrefix(got[0], "GET bench:") || !strings.HasSuffix(got[0], "\r\n") {
		t.Fatalf("wire command %q does not carry a randomized key", got[0])
	}
}

func TestNewDriverValidation(t *testing.T) {
	if _, err := flashkv.NewDriver(flashkv.Config{}); err == nil {
		t.Error("expected error for missing address")
	}
	if _, err := flashkv.NewDriver(flashkv.Config{Address: "localhost:6379"}); err == nil {
		t.Error("expected error for missing commands")
	}
	_, err := flashkv.NewDriver(flashkv.Config{
		Address:    "localhost:6379",
		Commands:   []flashkv.Command{{Verb: flashkv.VerbGet, Key: "k"}},
		RandomKeys: true,
		KeyRange:   0,
	})
	if err == nil {
		t.Error("expected error for zero key range with random keys enabled")
	}
}
