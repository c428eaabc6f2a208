package tcp

import (
	"bufio"
	"errors"
	"net"
	"strings"
)

// MaxLineLength bounds a single protocol line, terminator included. A peer
// exceeding it is treated as broken and disconnected.
const MaxLineLength = 1024

var ErrLineTooLong = errors.New("line exceeds maximum length")

// LineTransport frames a TCP connection as newline-terminated text lines.
type LineTransport struct {
	conn net.Conn
	rd   *bufio.Reader
}

func NewLineTransport(conn net.Conn) *LineTransport {
	return &LineTransport{
		conn: conn,
		rd:   bufio.NewReaderSize(conn, MaxLineLength),
	}
}

// ReadLine returns the next line with the terminator (and an optional
// trailing CR) stripped. A line longer than MaxLineLength surfaces as
// ErrLineTooLong; a partial line cut off by EOF is discarded.
func (t *LineTransport) ReadLine() (string, error) {
	line, err := t.rd.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", ErrLineTooLong
		}
		return "", err
	}
	// Strip exactly the terminator and one optional preceding CR; anything
	// else, including a CR inside or at the end of the body, is payload.
	out := strings.TrimSuffix(string(line), "\n")
	return strings.TrimSuffix(out, "\r"), nil
}

func (t *LineTransport) WriteLine(message string) error {
	_, err := t.conn.Write([]byte(message + "\n"))
	return err
}

func (t *LineTransport) Close() error {
	return t.conn.Close()
}
