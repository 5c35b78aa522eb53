// Package calllog records every provider call as one JSON line.
package calllog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
)

// FileName is the log file created inside the configured directory.
const FileName = "llm_calls.jsonl"

// Entry is one logged call.
type Entry struct {
	CallNumber   int                `json:"call_number"`
	Timestamp    time.Time          `json:"timestamp"`
	Model        string             `json:"model"`
	Success      bool               `json:"success"`
	Messages     []provider.Message `json:"messages"`
	Response     string             `json:"response,omitempty"`
	ResponseID   string             `json:"response_id,omitempty"`
	Error        string             `json:"error,omitempty"`
	PromptTokens int                `json:"prompt_tokens"`
	DurationMs   int64              `json:"duration_ms"`
}

// TokenCounter estimates the token count of a text.
type TokenCounter func(text string) int

// Provider wraps another provider and appends an Entry per call.
type Provider struct {
	next   provider.Provider
	w      io.Writer
	count  TokenCounter
	now    func() time.Time
	mu     sync.Mutex
	calls  int
	closer io.Closer
}

// New wraps next, writing entries to w.
func New(next provider.Provider, w io.Writer, count TokenCounter) *Provider {
	if next == nil {
		panic("next provider is required")
	}
	if w == nil {
		panic("writer is required")
	}
	if count == nil {
		count = ApproxTokens
	}
	return &Provider{next: next, w: w, count: count, now: time.Now}
}

// Open creates dir if needed and appends to dir/llm_calls.jsonl.
func Open(next provider.Provider, dir string, count TokenCounter) (*Provider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create call log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open call log: %w", err)
	}
	p := New(next, f, count)
	p.closer = f
	return p, nil
}

// Close closes the underlying file when the log was opened with Open.
func (p *Provider) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Model forwards to the wrapped provider.
func (p *Provider) Model() string {
	return provider.ModelName(p.next)
}

// Generate delegates and records the outcome. Log write failures never fail
// the call.
func (p *Provider) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	start := p.now()
	text, err := p.next.Generate(ctx, messages)

	entry := Entry{
		Timestamp:    start.UTC(),
		Model:        provider.ModelName(p.next),
		Success:      err == nil,
		Messages:     messages,
		PromptTokens: p.promptTokens(messages),
		DurationMs:   p.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Response = text
		entry.ResponseID = uuid.NewString()
	}
	p.write(entry)

	return text, err
}

func (p *Provider) promptTokens(messages []provider.Message) int {
	total := 0
	for _, m := range messages {
		total += p.count(m.Content)
	}
	return total
}

func (p *Provider) write(entry Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	entry.CallNumber = p.calls

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = p.w.Write(append(data, '\n'))
}

// NewTokenCounter returns a tiktoken-based counter for model, falling back
// to cl100k_base and then to ApproxTokens when no encoding can be loaded.
func NewTokenCounter(model string) TokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return ApproxTokens
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}

// ApproxTokens estimates four characters per token.
func ApproxTokens(text string) int {
	return (len(text) + 3) / 4
}
