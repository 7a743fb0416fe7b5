//go:build linux
// +build linux

// File: transport/tcp/integration_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// End-to-end tests over real sockets.

package tcp_test

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/server"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, capacity int, hooks server.Hooks) (api.Substrate, *server.Server) {
	t.Helper()
	sub, err := tcp.New(tcp.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("tcp.New: %v", err)
	}
	t.Cleanup(func() { _ = sub.Shutdown() })

	cfg := server.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.Capacity = capacity
	cfg.Logger = quietLogger()
	srv, err := server.NewServer(sub, cfg, hooks)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sub, srv
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	c, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestEchoRoundTrip(t *testing.T) {
	_, srv := startServer(t, 2, server.Hooks{
		OnMessage: func(m *server.Message, respond server.Responder) {
			reply := append([]byte("RaceTrack: "), m.Bytes()...)
			if err := respond(m, reply); err != nil {
				t.Errorf("respond: %v", err)
			}
		},
	})

	c := dial(t, srv.Addr())
	if _, err := c.Write([]byte("WRONG")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, len("RaceTrack: WRONG"))
	if _, err := io.ReadFull(c, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "RaceTrack: WRONG" {
		t.Errorf("reply = %q, want %q", got, "RaceTrack: WRONG")
	}
}

func TestCapacityRejectClosesPeer(t *testing.T) {
	connected := make(chan int, 4)
	_, srv := startServer(t, 1, server.Hooks{
		OnConnect: func(c *server.Conn, total int) { connected <- total },
	})

	a := dial(t, srv.Addr())
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("first connection was not accepted")
	}

	b := dial(t, srv.Addr())
	_ = b.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := b.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("over-capacity peer read err = %v, want EOF", err)
	}

	// The first connection is unaffected.
	if _, err := a.Write([]byte("still here")); err != nil {
		t.Errorf("first connection write: %v", err)
	}
	select {
	case total := <-connected:
		t.Fatalf("unexpected on-connect with total %d", total)
	default:
	}
}

func TestDisconnectBroadcastReachesSurvivor(t *testing.T) {
	connected := make(chan struct{}, 4)
	var srv *server.Server
	_, srv = startServer(t, 2, server.Hooks{
		OnConnect: func(c *server.Conn, total int) { connected <- struct{}{} },
		OnDisconnect: func(c *server.Conn, total int) {
			srv.Broadcast([]byte("Player quit :(\n"))
		},
	})

	a := dial(t, srv.Addr())
	b := dial(t, srv.Addr())
	for i := 0; i < 2; i++ {
		select {
		case <-connected:
		case <-time.After(2 * time.Second):
			t.Fatal("connections were not accepted in time")
		}
	}

	_ = a.Close()

	_ = b.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, len("Player quit :(\n"))
	if _, err := io.ReadFull(b, got); err != nil {
		t.Fatalf("survivor read: %v", err)
	}
	if string(got) != "Player quit :(\n" {
		t.Errorf("broadcast = %q, want quit notice", got)
	}
}

func TestServerShutdownClosesClients(t *testing.T) {
	connected := make(chan struct{}, 1)
	_, srv := startServer(t, 2, server.Hooks{
		OnConnect: func(c *server.Conn, total int) { connected <- struct{}{} },
	})

	c := dial(t, srv.Addr())
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not accepted")
	}

	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("client read after shutdown err = %v, want EOF", err)
	}
}
