// Package input turns raw terminal bytes into viewer commands.
package input

import (
	"bufio"
)

// Input holds the commands seen since the previous poll. Counters let a
// held key that repeats several times per frame act several times.
type Input struct {
	Quit    bool
	Pause   bool // toggle
	Faster  int
	Slower  int
	Left    int
	Right   int
	Up      int
	Down    int
	ZoomIn  int
	ZoomOut int
	Closed  bool // the underlying reader has ended
}

// Stream delivers input bytes from a reader through a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r until it fails.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Poll drains all buffered bytes without blocking and parses them.
func (s *Stream) Poll() Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Parse(buf)
	in.Closed = s.closed
	return in
}

// Parse maps a batch of bytes to commands. Arrow keys arrive as ESC [ A-D.
func Parse(buf []byte) Input {
	var in Input
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				in.Up++
			case 'B':
				in.Down++
			case 'C':
				in.Right++
			case 'D':
				in.Left++
			}
			i += 2
			continue
		}
		apply(&in, b)
	}
	return in
}

func apply(in *Input, b byte) {
	switch b {
	case 'q', 'Q', '\x03': // ctrl-c in raw mode
		in.Quit = true
	case ' ', 'p', 'P':
		in.Pause = !in.Pause
	case '+', '=':
		in.Faster++
	case '-', '_':
		in.Slower++
	case 'a', 'A':
		in.Left++
	case 'd', 'D':
		in.Right++
	case 'w', 'W':
		in.Up++
	case 's', 'S':
		in.Down++
	case 'z', 'Z':
		in.ZoomIn++
	case 'x', 'X':
		in.ZoomOut++
	}
}
