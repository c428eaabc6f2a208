package websocket

import (
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// wsTransport maps the line protocol onto websocket frames: every inbound
// text frame is one chat line, every outbound line is one text frame.
type wsTransport struct {
	conn *websocket.Conn
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadLine() (string, error) {
	for {
		mt, msg, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		if mt != websocket.TextMessage {
			continue
		}
		line := strings.TrimSuffix(string(msg), "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}
}

func (t *wsTransport) WriteLine(message string) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(defaultWriteDeadline)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// Close may run while the session's writer is inside WriteLine, so it must
// not touch the regular write path; WriteControl is the only gorilla write
// method safe to call concurrently with it.
func (t *wsTransport) Close() error {
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(defaultCloseWriteDeadline))
	return t.conn.Close()
}
