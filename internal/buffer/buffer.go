package buffer

import "bytes"

// Line accumulates a single LF-terminated line, which may arrive split across any number
// of reads. The line length is limited, the terminating CRLF (or a bare LF) doesn't
// count towards the limit. If the whole line is contained within a single read, it is
// returned as is, without copying.
type Line struct {
	memory  []byte
	maxSize int
}

func NewLine(initialSize, maxSize int) *Line {
	return &Line{
		memory:  make([]byte, 0, min(initialSize, maxSize+1)),
		maxSize: maxSize,
	}
}

// Read consumes data up to and including the first LF. If the line is completed, it is
// returned without its line terminator alongside with everything following it. The returned
// line stays valid until the next call. If the line isn't completed yet, the data is
// stored internally. ok is false if the line exceeds the limit, in which case the stored
// data is left as is.
func (l *Line) Read(data []byte) (line, rest []byte, complete, ok bool) {
	lf := bytes.IndexByte(data, '\n')
	if lf == -1 {
		// one more byte is reserved for a CR, which isn't part of the line.
		if len(l.memory)+len(data) > l.maxSize+1 {
			return nil, nil, false, false
		}

		l.memory = append(l.memory, data...)
		return nil, nil, false, true
	}

	line, rest = data[:lf], data[lf+1:]
	if len(l.memory) > 0 {
		if len(l.memory)+len(line) > l.maxSize+1 {
			return nil, nil, false, false
		}

		line = append(l.memory, line...)
		// the backing array stays alive until the next write, so the line is
		// still valid for the caller.
		l.memory = line[:0]
	}

	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	if len(line) > l.maxSize {
		return nil, nil, false, false
	}

	return line, rest, true, true
}

// Len returns the number of currently accumulated bytes.
func (l *Line) Len() int {
	return len(l.memory)
}

// Clear drops the accumulated data, keeping the allocated space.
func (l *Line) Clear() {
	l.memory = l.memory[:0]
}
