package loop

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
)

// callSignature is the tool name plus a hash of its ordered arguments.
func callSignature(name string, args protocol.Args) string {
	var sb strings.Builder
	for _, k := range args.Keys() {
		v, _ := args.Get(k)
		sb.WriteString(k)
		sb.WriteByte(0)
		sb.WriteString(v)
		sb.WriteByte(0)
	}
	h := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%s:%x", name, h[:8])
}

// loopDetector keeps the most recent call signatures.
type loopDetector struct {
	window int
	sigs   []string
}

func newLoopDetector(window int) *loopDetector {
	return &loopDetector{window: window}
}

// record adds a signature and reports whether the last window calls form
// a repeating pattern of length 1, 2 or 3. The history is cleared on a hit
// so one loop produces one warning.
func (d *loopDetector) record(sig string) bool {
	if d.window <= 0 {
		return false
	}
	d.sigs = append(d.sigs, sig)
	if len(d.sigs) > d.window {
		d.sigs = d.sigs[len(d.sigs)-d.window:]
	}
	if len(d.sigs) < d.window {
		return false
	}

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if d.window%patternLen != 0 || d.window == patternLen {
			continue
		}
		if repeats(d.sigs, patternLen) {
			d.sigs = d.sigs[:0]
			return true
		}
	}
	return false
}

func repeats(sigs []string, patternLen int) bool {
	for i := patternLen; i < len(sigs); i++ {
		if sigs[i] != sigs[i%patternLen] {
			return false
		}
	}
	return true
}

func loopWarning(window int) string {
	return fmt.Sprintf("Warning: your last %d tool calls repeat the same pattern and are not making progress. "+
		"Step back, re-read the latest observations, and try a different approach.", window)
}
