package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/Hyunsang-coder/jira-translator/internal/glossary"
	"github.com/Hyunsang-coder/jira-translator/internal/postprocess"
)

// structuredParser selects how structured output is requested from the
// model: strict JSON-schema validation, or a plain JSON object the provider
// parses leniently. Chosen at construction, not per call.
type structuredParser interface {
	responseFormat(name string, schema map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion
}

type schemaParser struct{}

func (schemaParser) responseFormat(name string, schema map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
}

type mappingParser struct{}

func (mappingParser) responseFormat(string, map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}
}

// OpenAIProvider implements Provider and glossary.Classifier on top of the
// OpenAI chat completions API.
type OpenAIProvider struct {
	client openai.Client
	model  string
	parser structuredParser
}

// NewOpenAIProvider creates a provider. baseURL may be empty for the public
// API. strictSchema selects the JSON-schema-validated response parser;
// otherwise responses are requested as plain JSON objects.
func NewOpenAIProvider(apiKey, baseURL, model string, strictSchema bool) *OpenAIProvider {
	// Retry policy lives in Batch, not in the SDK.
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	var parser structuredParser = mappingParser{}
	if strictSchema {
		parser = schemaParser{}
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		parser: parser,
	}
}

var translationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"translations": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":         map[string]any{"type": "string"},
					"translated": map[string]any{"type": "string"},
				},
				"required":             []string{"id", "translated"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"translations"},
	"additionalProperties": false,
}

var selectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"selected_ids": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"selected_ids"},
	"additionalProperties": false,
}

// TranslateBatch issues one structured request covering all items and
// parses the reply into a chunk-id to text mapping.
func (p *OpenAIProvider) TranslateBatch(ctx context.Context, req BatchRequest) (map[string]string, error) {
	userMsg, err := batchUserMessage(req.Items)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage(req.PromptOptions, true)),
			openai.UserMessage(userMsg),
		},
		ResponseFormat: p.parser.responseFormat("translation_response", translationSchema),
	})
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Cause: errors.New("empty choices")}
	}

	var parsed struct {
		Translations []struct {
			ID         string `json:"id"`
			Translated string `json:"translated"`
		} `json:"translations"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, &MalformedResponseError{Cause: err}
	}
	if parsed.Translations == nil {
		return nil, &MalformedResponseError{Cause: errors.New("no translations field in response")}
	}

	result := make(map[string]string, len(parsed.Translations))
	for _, item := range parsed.Translations {
		if item.ID == "" {
			continue
		}
		if text := strings.TrimSpace(item.Translated); text != "" {
			result[item.ID] = text
		}
	}
	return result, nil
}

// TranslateText is the per-chunk fallback: a plain completion with the
// single-text prompt variant.
func (p *OpenAIProvider) TranslateText(ctx context.Context, text string, opts PromptOptions) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage(opts, false)),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", mapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Cause: errors.New("empty choices")}
	}
	return postprocess.Clean(resp.Choices[0].Message.Content), nil
}

// SelectGlossaryIDs implements glossary.Classifier: the narrower
// classification request that trims an oversized candidate list down to the
// terms relevant to the given texts.
func (p *OpenAIProvider) SelectGlossaryIDs(ctx context.Context, texts []string, candidates []glossary.Term) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("You are a glossary selector. Given the following text and a list of glossary terms, " +
		"select ONLY the terms that are actually relevant to translating this specific text. " +
		"Return a JSON object with a 'selected_ids' field containing ONLY glossary ids to keep.\n\nTEXT:\n")
	sb.WriteString(strings.Join(texts, "\n"))
	sb.WriteString("\n\nGLOSSARY TERMS:\n")
	for i, term := range candidates {
		fmt.Fprintf(&sb, "%d. id=%s | en=%s | ko=%s", i, term.ID, term.En, term.Ko)
		if term.Note != "" {
			fmt.Fprintf(&sb, " | note: %s", term.Note)
		}
		if term.Category != "" {
			fmt.Fprintf(&sb, " | category: %s", term.Category)
		}
		sb.WriteString("\n")
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(sb.String()),
		},
		ResponseFormat: p.parser.responseFormat("glossary_selection", selectionSchema),
	})
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedResponseError{Cause: errors.New("empty choices")}
	}

	var parsed struct {
		SelectedIDs []string `json:"selected_ids"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, &MalformedResponseError{Cause: err}
	}
	return parsed.SelectedIDs, nil
}

// mapAPIError translates transport/provider failures into the local error
// taxonomy so the retry ladder can tell them apart.
func mapAPIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Cause: err}
		case http.StatusTooManyRequests:
			return &RateLimitError{Cause: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Cause: err}
	}
	return err
}
