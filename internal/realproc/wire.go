package realproc

import (
	"fmt"
	"io"
)

// TimeByteLen is the width, in bytes, of the big-endian simulation-time
// value sent on every handshake.
const TimeByteLen = 4

// HashLen is the width, in bytes, of the hash the child emits on Terminate.
const HashLen = 64

// sendTime writes t as 4 big-endian bytes (most significant byte first), one
// write per byte as the protocol requires, and returns the least
// significant byte — the value Start/Continue expect echoed back.
func sendTime(w io.Writer, t uint32) (lsb byte, err error) {
	bytes := [TimeByteLen]byte{
		byte(t >> 24),
		byte(t >> 16),
		byte(t >> 8),
		byte(t),
	}
	for _, b := range bytes {
		if _, err := w.Write([]byte{b}); err != nil {
			return 0, fmt.Errorf("failed writing time byte: %w", err)
		}
	}
	return bytes[TimeByteLen-1], nil
}

// readAndVerify reads exactly one byte from r and checks it matches want,
// the echo contract of Start/Continue. A mismatch is fatal to the run.
func readAndVerify(r io.Reader, want byte) error {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("failed reading echo byte: %w", err)
	}
	if buf[0] != want {
		return fmt.Errorf("protocol echo mismatch: got 0x%02x, want 0x%02x", buf[0], want)
	}
	return nil
}

// readHash reads the fixed-width completion hash emitted on Terminate.
func readHash(r io.Reader) (string, error) {
	buf := make([]byte, HashLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed reading completion hash: %w", err)
	}
	return string(buf), nil
}
