package recognition

import (
	"context"
	"sync/atomic"

	"github.com/cesargomez89/shamzam/internal/domain"
)

// MockRecognizer answers every sample with the same result. It backs the
// "mock" provider for offline runs and stands in for AudD in tests.
type MockRecognizer struct {
	Err    error
	Result domain.RecognitionResult
	calls  atomic.Int64
}

func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{Result: domain.NewRecognitionResult("Mock Artist", "Mock Track")}
}

func (m *MockRecognizer) Recognize(ctx context.Context, audio []byte, filename string) (domain.RecognitionResult, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, "recognition.mock", err)
	}
	if m.Err != nil {
		return domain.RecognitionResult{}, m.Err
	}
	return m.Result, nil
}

// Calls reports how many times Recognize ran.
func (m *MockRecognizer) Calls() int {
	return int(m.calls.Load())
}
