package loop

import (
	"runtime"
	"sync"
)

var stackBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 64)
		return &b
	},
}

// goroutineID parses the current goroutine's id from runtime.Stack.
// Returns 0 if the header cannot be parsed.
func goroutineID() uint64 {
	bp := stackBufPool.Get().(*[]byte)
	defer stackBufPool.Put(bp)

	n := runtime.Stack(*bp, false)
	return parseGoroutineID((*bp)[:n])
}

// parseGoroutineID reads the id out of a "goroutine N [status]:" header.
func parseGoroutineID(stack []byte) uint64 {
	const prefix = "goroutine "
	if len(stack) < len(prefix) || string(stack[:len(prefix)]) != prefix {
		return 0
	}

	var id uint64
	digits := 0
	for _, b := range stack[len(prefix):] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + uint64(b-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	return id
}
