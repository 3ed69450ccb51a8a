package agent

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewTaskID returns a random 128-bit task identifier. Falls back to a
// timestamp string if the random source fails.
func NewTaskID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err == nil {
		return "task_" + hex.EncodeToString(buf)
	}
	return fmt.Sprintf("task_%d", time.Now().UTC().UnixNano())
}
