package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"

	eventdomain "mailpilot-backend/internal/event/domain"
)

// FallbackService routes proposal requests with fallback:
// Gemini first (better at structured extraction), Ollama when Gemini is
// unavailable or over quota.
type FallbackService struct {
	gemini eventdomain.EventReasoner
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini eventdomain.EventReasoner, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

func (f *FallbackService) Name() string {
	return "fallback"
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// ProposeEvent tries Gemini first, falls back to Ollama on quota or
// connection errors. An abstention from the primary is final and never
// retried against the fallback.
func (f *FallbackService) ProposeEvent(ctx context.Context, req *eventdomain.ProposeRequest) (*eventdomain.EventProposal, error) {
	if f.gemini != nil {
		proposal, err := f.gemini.ProposeEvent(ctx, req)
		if err == nil {
			return proposal, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		proposal, err := f.ollama.ProposeEvent(ctx, req)
		if err == nil {
			return proposal, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.ProposeEvent(ctx, req)
		}

		return nil, fmt.Errorf("ollama proposal failed: %w", err)
	}

	return nil, fmt.Errorf("no AI provider available for event proposals")
}
