// Package recognition talks to the external audio fingerprinting service.
package recognition

import (
	"context"
	"fmt"

	"github.com/cesargomez89/shamzam/internal/config"
	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/httpclient"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
)

// Public reasons attached to transport failures. They end up in client
// responses, so they never carry internal error text.
const (
	ReasonTimeout     = "recognition provider timed out"
	ReasonUnreachable = "recognition provider unreachable"
)

// Recognizer identifies an audio sample. Implementations make a single
// attempt and return a *domain.Error of kind UpstreamFailure on any failure.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, filename string) (domain.RecognitionResult, error)
}

// New builds the recognizer selected by cfg.RecognitionProvider.
func New(cfg *config.Config, client httpclient.Doer, m *metrics.Metrics, log *logger.Logger) (Recognizer, error) {
	switch cfg.RecognitionProvider {
	case constants.ProviderAudD:
		return NewAudDProvider(AudDOptions{
			URL:     cfg.RecognitionURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.RecognitionTimeout,
			Client:  client,
			Metrics: m,
			Logger:  log,
		}), nil
	case constants.ProviderMock:
		return NewMockRecognizer(), nil
	default:
		return nil, fmt.Errorf("unknown recognition provider: %s", cfg.RecognitionProvider)
	}
}
