// Package translator orchestrates structured translation calls against an
// LLM provider. One batch request covers every pending chunk of a ticket;
// transient failures are retried at batch granularity, and chunks the model
// keeps omitting fall back to individual calls so a single parsing failure
// costs one field, not the whole ticket.
package translator

import (
	"context"
	"errors"
	"time"
)

// Config bounds the retry ladder. Retries counts whole-batch re-attempts
// after the first call; RateLimitBackoff is the wait before the single
// retry granted to a throttled request.
type Config struct {
	Retries          int
	RateLimitBackoff time.Duration
}

// Batch issues one structured translation request per ticket with bounded
// retries and a per-chunk fallback.
type Batch struct {
	provider Provider
	config   Config
}

// New creates a batch translator. Zero config fields get conservative
// defaults (2 retries, 2s backoff).
func New(provider Provider, config Config) *Batch {
	if config.Retries <= 0 {
		config.Retries = 2
	}
	if config.RateLimitBackoff <= 0 {
		config.RateLimitBackoff = 2 * time.Second
	}
	return &Batch{provider: provider, config: config}
}

// Translate fills in the Translated text and Status of every non-skip chunk.
// It returns the ids of chunks that stayed missing after the fallback ladder
// and an error only for conditions that abort the whole batch (rejected
// credentials, throttling beyond the backoff retry, or a batch request that
// never produced a single usable response).
func (b *Batch) Translate(ctx context.Context, chunks []*Chunk, opts PromptOptions) ([]string, error) {
	req := BatchRequest{PromptOptions: opts}
	for _, chunk := range chunks {
		if chunk.Skip {
			continue
		}
		chunk.Status = StatusPending
		req.Items = append(req.Items, BatchItem{ID: chunk.ID, Field: fieldHint(chunk), Text: chunk.SourceText})
	}
	if len(req.Items) == 0 {
		return nil, nil
	}

	result, err := b.batchWithRetry(ctx, req, chunks)
	if err != nil {
		return nil, err
	}

	apply(chunks, result, StatusTranslated)

	// Individual fallback for whatever the batch never returned.
	var missing []string
	for _, chunk := range chunks {
		if chunk.Skip || chunk.Status != StatusPending {
			continue
		}
		text, fbErr := b.provider.TranslateText(ctx, chunk.SourceText, opts)
		if fbErr != nil || text == "" {
			chunk.Status = StatusMissing
			missing = append(missing, chunk.ID)
			continue
		}
		chunk.Translated = text
		chunk.Status = StatusFallbackTranslated
	}

	return missing, nil
}

// batchWithRetry runs the whole-batch attempt loop. Malformed responses and
// partial omissions consume the shared retry budget; auth failures surface
// immediately; a throttled request gets exactly one backoff retry on top.
func (b *Batch) batchWithRetry(ctx context.Context, req BatchRequest, chunks []*Chunk) (map[string]string, error) {
	var (
		lastErr     error
		result      map[string]string
		rateLimited bool
		gotResponse bool
	)

	for attempt := 0; attempt <= b.config.Retries; attempt++ {
		res, err := b.provider.TranslateBatch(ctx, req)
		if err == nil {
			gotResponse = true
			if result == nil {
				result = res
			} else {
				for id, text := range res {
					result[id] = text
				}
			}
			if coversAll(req.Items, result) {
				return result, nil
			}
			lastErr = &MissingChunkError{IDs: uncovered(req.Items, result)}
			continue
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, err
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			if rateLimited {
				return nil, err
			}
			rateLimited = true
			select {
			case <-time.After(b.config.RateLimitBackoff):
			case <-ctx.Done():
				return nil, &TimeoutError{Cause: ctx.Err()}
			}
			attempt-- // the backoff retry does not consume the budget
		}

		lastErr = err
	}

	if !gotResponse {
		return nil, lastErr
	}
	// A partial response is still usable; the caller falls back per chunk.
	return result, nil
}

func apply(chunks []*Chunk, result map[string]string, status Status) {
	for _, chunk := range chunks {
		if chunk.Skip || chunk.Status != StatusPending {
			continue
		}
		if text, ok := result[chunk.ID]; ok && text != "" {
			chunk.Translated = text
			chunk.Status = status
		}
	}
}

func coversAll(items []BatchItem, result map[string]string) bool {
	return len(uncovered(items, result)) == 0
}

func uncovered(items []BatchItem, result map[string]string) []string {
	var ids []string
	for _, item := range items {
		if result[item.ID] == "" {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func fieldHint(chunk *Chunk) string {
	if chunk.Field != "" {
		return chunk.Field
	}
	return "other"
}
