// Package eventstream consumes an event-stream response body: it splits
// the raw bytes into frames separated by a blank line and parses each
// frame into an event name plus a JSON-or-text payload.
package eventstream

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Reader yields complete frames from a streaming body, in arrival order.
// One Reader serves exactly one stream; it is not restartable.
type Reader struct {
	sc *bufio.Scanner
}

// NewReader wraps the stream body. Buffering is byte-oriented, so
// multi-byte characters split across transport chunks survive intact.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(splitFrames)
	return &Reader{sc: sc}
}

// Next returns the next non-blank frame, or io.EOF once the stream is
// exhausted. Whitespace-only frames are skipped.
func (r *Reader) Next() (Frame, error) {
	for r.sc.Scan() {
		block := r.sc.Text()
		if strings.TrimSpace(block) == "" {
			continue
		}
		return parseFrame(block), nil
	}
	if err := r.sc.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

// splitFrames is a bufio.SplitFunc cutting the stream on double
// line-breaks. A non-empty remainder at EOF is emitted as a final frame,
// covering servers that omit the trailing boundary.
func splitFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return i + 2, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
