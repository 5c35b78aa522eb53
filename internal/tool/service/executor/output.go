package executor

import (
	"bytes"
	"sync"

	"github.com/Cyclone1070/reactagent/internal/tool/helper/content"
)

// collector captures command output with a size cap and binary detection.
type collector struct {
	mu        sync.Mutex
	buffer    bytes.Buffer
	maxBytes  int
	truncated bool
	isBinary  bool

	bytesChecked int
	sampleSize   int
}

func newCollector(maxBytes int, sampleSize int) *collector {
	return &collector{
		maxBytes:   maxBytes,
		sampleSize: sampleSize,
	}
}

func (c *collector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isBinary {
		return len(p), nil
	}

	if c.bytesChecked < c.sampleSize {
		toCheck := p[:min(len(p), c.sampleSize-c.bytesChecked)]
		if content.IsBinaryContent(toCheck) {
			c.isBinary = true
			c.truncated = true
			return len(p), nil
		}
		c.bytesChecked += len(toCheck)
	}

	room := c.maxBytes - c.buffer.Len()
	if room <= 0 {
		c.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		c.buffer.Write(p[:room])
		c.truncated = true
		return len(p), nil
	}
	c.buffer.Write(p)
	return len(p), nil
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isBinary {
		return "[Binary Content]"
	}
	return c.buffer.String()
}

func (c *collector) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
