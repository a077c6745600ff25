package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/httpclient"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
)

// AudDOptions configures an AudDProvider. Zero values fall back to defaults.
type AudDOptions struct {
	Client  httpclient.Doer
	Metrics *metrics.Metrics
	Logger  *logger.Logger
	URL     string
	APIKey  string
	Timeout time.Duration
}

// AudDProvider posts samples to an AudD compatible endpoint.
type AudDProvider struct {
	client  httpclient.Doer
	metrics *metrics.Metrics
	log     *logger.Logger
	url     string
	apiKey  string
	timeout time.Duration
}

func NewAudDProvider(opts AudDOptions) *AudDProvider {
	p := &AudDProvider{
		client:  opts.Client,
		metrics: opts.Metrics,
		log:     opts.Logger,
		url:     opts.URL,
		apiKey:  opts.APIKey,
		timeout: opts.Timeout,
	}
	if p.client == nil {
		p.client = httpclient.NewClient(nil, constants.DefaultRecognitionRate)
	}
	if p.log == nil {
		p.log = logger.Default()
	}
	p.log = p.log.WithComponent("recognition")
	if p.url == "" {
		p.url = constants.DefaultRecognitionURL
	}
	if p.timeout <= 0 {
		p.timeout = constants.DefaultRecognitionTimeout
	}
	return p
}

type auddResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		ErrorMessage string `json:"error_message"`
		ErrorCode    int    `json:"error_code"`
	} `json:"error"`
}

// Recognize uploads audio once and extracts artist and title from the result.
func (p *AudDProvider) Recognize(ctx context.Context, audio []byte, filename string) (domain.RecognitionResult, error) {
	start := time.Now()
	res, err := p.recognize(ctx, audio, filename)
	p.metrics.ObserveRecognition(time.Since(start), err)
	if err != nil {
		p.log.Warn("Recognition failed", "file", filename, "duration", time.Since(start), "error", err)
		return domain.RecognitionResult{}, err
	}
	p.log.Debug("Recognition succeeded", "file", filename, "artist", res.Artist, "title", res.Title, "duration", time.Since(start))
	return res, nil
}

func (p *AudDProvider) recognize(ctx context.Context, audio []byte, filename string) (domain.RecognitionResult, error) {
	const op = "recognition.audd"

	body, contentType, err := p.encode(audio, filename)
	if err != nil {
		return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set(constants.HeaderContentType, contentType)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return domain.RecognitionResult{}, transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("provider returned %s", resp.Status))
	}

	var payload auddResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return domain.RecognitionResult{}, transportError(op, ctx.Err())
		}
		return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("failed to decode response: %w", err))
	}

	if payload.Status == "error" {
		msg := "unspecified error"
		if payload.Error != nil {
			msg = fmt.Sprintf("code %d: %s", payload.Error.ErrorCode, payload.Error.ErrorMessage)
		}
		return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("provider error: %s", msg))
	}
	// An absent result means every field is missing; an explicit null is no match.
	var result struct {
		Artist string `json:"artist"`
		Title  string `json:"title"`
	}
	if len(payload.Result) > 0 {
		if bytes.Equal(bytes.TrimSpace(payload.Result), []byte("null")) {
			return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, errors.New("no match"))
		}
		if err := json.Unmarshal(payload.Result, &result); err != nil {
			return domain.RecognitionResult{}, domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("failed to decode result: %w", err))
		}
	}

	return domain.NewRecognitionResult(result.Artist, result.Title), nil
}

func (p *AudDProvider) encode(audio []byte, filename string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("api_token", p.apiKey); err != nil {
		return nil, "", fmt.Errorf("failed to write api_token: %w", err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func transportError(op string, err error) error {
	reason := ReasonUnreachable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		reason = ReasonTimeout
	}
	return &domain.Error{Kind: domain.KindUpstreamFailure, Op: op, Reason: reason, Err: err}
}
