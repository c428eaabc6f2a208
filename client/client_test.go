package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mx  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.String()
}

type fakeServer struct {
	lis   net.Listener
	lines chan string
	conn  chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	fs := &fakeServer{
		lis:   lis,
		lines: make(chan string, 16),
		conn:  make(chan net.Conn, 1),
	}
	go func() {
		conn, aerr := lis.Accept()
		if aerr != nil {
			return
		}
		fs.conn <- conn
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			fs.lines <- sc.Text()
		}
		close(fs.lines)
	}()
	return fs
}

func (fs *fakeServer) port() int {
	return fs.lis.Addr().(*net.TCPAddr).Port
}

func (fs *fakeServer) nextLine(t *testing.T) string {
	t.Helper()
	select {
	case line := <-fs.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a line from the client")
		return ""
	}
}

func newTestClient(fs *fakeServer, in io.Reader, out io.Writer) *Client {
	logger := zerolog.Nop()
	return New(Config{
		Logger:   &logger,
		Host:     "127.0.0.1",
		Port:     fs.port(),
		Username: "alice",
		In:       in,
		Out:      out,
	})
}

func TestClient_HandshakeAndMessageFormat(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	inR, inW := io.Pipe()
	out := &syncBuffer{}
	c := newTestClient(fs, inR, out)

	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background())
	}()

	req.Equal("alice", fs.nextLine(t), "the first line must be the bare username")

	_, err := inW.Write([]byte("hello there\n"))
	req.NoError(err)
	req.Equal("[alice] hello there", fs.nextLine(t))

	// Closing stdin ends the client.
	req.NoError(inW.Close())
	select {
	case err = <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop on input EOF")
	}
}

func TestClient_PrintsServerLines(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	inR, inW := io.Pipe()
	defer inW.Close()
	out := &syncBuffer{}
	c := newTestClient(fs, inR, out)

	go func() { _ = c.Run(context.Background()) }()

	fs.nextLine(t) // handshake

	var conn net.Conn
	select {
	case conn = <-fs.conn:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted")
	}
	_, err := conn.Write([]byte("[bob] hi\n"))
	req.NoError(err)

	req.Eventually(func() bool {
		return strings.Contains(out.String(), "[bob] hi")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_SkipsEmptyInputLines(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	in := strings.NewReader("\n\nreal message\n")
	out := &syncBuffer{}
	c := newTestClient(fs, in, out)

	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background())
	}()

	req.Equal("alice", fs.nextLine(t))
	req.Equal("[alice] real message", fs.nextLine(t))
	req.NoError(<-done)
}

func TestClient_ConnectFailure(t *testing.T) {
	logger := zerolog.Nop()
	c := New(Config{
		Logger:   &logger,
		Host:     "127.0.0.1",
		Port:     1, // nothing listens here
		Username: "alice",
		In:       strings.NewReader(""),
		Out:      io.Discard,
	})
	require.ErrorIs(t, c.Run(context.Background()), ErrConnect)
}

func TestClient_StopsWhenServerCloses(t *testing.T) {
	req := require.New(t)
	fs := newFakeServer(t)

	inR, inW := io.Pipe()
	defer inW.Close()
	c := newTestClient(fs, inR, &syncBuffer{})

	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background())
	}()

	fs.nextLine(t) // handshake
	var conn net.Conn
	select {
	case conn = <-fs.conn:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted")
	}
	req.NoError(conn.Close())

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after server close")
	}
}
