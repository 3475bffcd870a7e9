package translator

import "context"

// Status tracks a chunk through the batch-translate-with-fallback ladder.
type Status string

const (
	StatusPending            Status = "pending"
	StatusTranslated         Status = "translated"
	StatusMissing            Status = "missing"
	StatusFallbackTranslated Status = "fallbackTranslated"
)

// Chunk is one unit of text submitted to the provider within a batch
// request. The id is stable across the request and its response so partial
// failures can be localized to a single field or section.
type Chunk struct {
	ID         string
	Field      string
	Header     string
	SourceText string
	Translated string
	Status     Status
	Skip       bool
}

// BatchItem is the provider-facing shape of one chunk. Field is passed as a
// tone/style hint ("summary", "description", "steps").
type BatchItem struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Text  string `json:"text"`
}

// PromptOptions carries everything prompt construction needs besides the
// text itself.
type PromptOptions struct {
	GlossaryInstruction string
	SourceLang          string // "ko" or "en"
	TargetLang          string
}

// BatchRequest is one structured translation request covering every pending
// chunk of a ticket.
type BatchRequest struct {
	Items []BatchItem
	PromptOptions
}

// Provider executes translation calls. TranslateBatch returns a chunk-id to
// translated-text mapping; ids absent from the map were omitted by the
// model. TranslateText is the narrow per-chunk fallback shape.
type Provider interface {
	TranslateBatch(ctx context.Context, req BatchRequest) (map[string]string, error)
	TranslateText(ctx context.Context, text string, opts PromptOptions) (string, error)
}
