package log

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

// EntryLogger records one line per rewritten archive entry.
type EntryLogger interface {
	Log(entry string, in, out []byte)
}

type entryLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewEntryLogger returns an EntryLogger writing to w. A nil w discards.
func NewEntryLogger(w io.Writer) EntryLogger {
	return &entryLogger{w: w}
}

// Log writes timestamp, entry name, sizes and short digests of both sides.
func (l *entryLogger) Log(entry string, in, out []byte) {
	if l.w == nil {
		return
	}
	line := fmt.Sprintf("%s %s in: %d bytes %s, out: %d bytes %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		entry,
		len(in), digest(in),
		len(out), digest(out))

	l.mu.Lock()
	_, _ = io.WriteString(l.w, line)
	l.mu.Unlock()
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:6])
}
