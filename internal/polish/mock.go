package polish

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTurn scripts a single transport response for tests.
type MockTurn struct {
	Chunks     []string      // chunks to emit, in order
	ChunkDelay time.Duration // optional delay before each chunk
	Err        error         // returned after Chunks instead of a clean end
	Hang       bool          // after Chunks, block until the session is cancelled
}

// MockTransport is a scripted transport for testing controllers and UIs.
// It records all requests for verification.
type MockTransport struct {
	mu        sync.Mutex
	turns     []MockTurn
	turnIndex int
	Requests  []Request
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// AddTurn appends a scripted turn and returns the transport for chaining.
func (m *MockTransport) AddTurn(t MockTurn) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, t)
	return m
}

// AddTextResponse scripts a turn that streams text in word-sized chunks.
func (m *MockTransport) AddTextResponse(text string) *MockTransport {
	return m.AddTurn(MockTurn{Chunks: chunkText(text, 10)})
}

// Reset clears recorded requests and rewinds the turn index.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnIndex = 0
	m.Requests = nil
}

// Open implements Transport.
func (m *MockTransport) Open(ctx context.Context, req Request) (Stream, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	if m.turnIndex >= len(m.turns) {
		m.mu.Unlock()
		return nil, fmt.Errorf("mock transport: no more turns configured (request %d, have %d)", m.turnIndex+1, len(m.turns))
	}
	turn := m.turns[m.turnIndex]
	m.turnIndex++
	m.mu.Unlock()

	return newChunkStream(ctx, func(ctx context.Context, ch chan<- segment) error {
		for _, chunk := range turn.Chunks {
			if turn.ChunkDelay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(turn.ChunkDelay):
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ch <- segment{text: chunk}:
			}
		}
		if turn.Err != nil {
			return turn.Err
		}
		if turn.Hang {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}), nil
}

// chunkText splits text into chunks of approximately the given size,
// breaking at word boundaries when possible.
func chunkText(text string, chunkSize int) []string {
	if len(text) == 0 {
		return nil
	}
	var chunks []string
	for len(text) > chunkSize {
		breakPoint := chunkSize
		for i := chunkSize; i > chunkSize/2; i-- {
			if text[i] == ' ' {
				breakPoint = i + 1
				break
			}
		}
		chunks = append(chunks, text[:breakPoint])
		text = text[breakPoint:]
	}
	return append(chunks, text)
}
