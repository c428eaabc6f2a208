package room

// History is a bounded FIFO buffer of the most recent broadcast messages.
// When it is full the oldest message is evicted to make room for a new one.
// It is not safe for concurrent use on its own; Room serializes access.
type History struct {
	messages []string
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{
		messages: make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Append stores msg, evicting the oldest entry if the buffer is full.
func (h *History) Append(msg string) {
	if len(h.messages) == h.capacity {
		copy(h.messages, h.messages[1:])
		h.messages[len(h.messages)-1] = msg
		return
	}
	h.messages = append(h.messages, msg)
}

// Messages returns the stored messages in arrival order. The returned slice
// is a copy and safe to retain.
func (h *History) Messages() []string {
	out := make([]string, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	return len(h.messages)
}
