package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hyunsang-coder/jira-translator/internal/glossary"
)

func completionServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv
}

func writeCompletion(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	if err != nil {
		t.Fatalf("encode completion: %v", err)
	}
}

func TestOpenAIProvider_TranslateBatch(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, `{"translations":[
			{"id":"summary","translated":"Crash on login"},
			{"id":"description__section_0","translated":"Open the app."},
			{"id":"empty","translated":"   "}
		]}`)
	})

	p := NewOpenAIProvider("test-key", srv.URL, "gpt-4.1", true)
	result, err := p.TranslateBatch(context.Background(), BatchRequest{
		Items: []BatchItem{
			{ID: "summary", Field: "summary", Text: "로그인 시 크래시"},
			{ID: "description__section_0", Field: "description", Text: "앱을 엽니다."},
		},
		PromptOptions: PromptOptions{SourceLang: "ko"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result["summary"]; got != "Crash on login" {
		t.Errorf("summary = %q", got)
	}
	if got := result["description__section_0"]; got != "Open the app." {
		t.Errorf("description = %q", got)
	}
	if _, ok := result["empty"]; ok {
		t.Error("whitespace-only translation must be dropped")
	}
}

func TestOpenAIProvider_TranslateBatchMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "sorry, I cannot help with that"},
		{name: "missing translations field", content: `{"results":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(t, w, tt.content)
			})

			p := NewOpenAIProvider("test-key", srv.URL, "gpt-4.1", false)
			_, err := p.TranslateBatch(context.Background(), BatchRequest{
				Items: []BatchItem{{ID: "a", Text: "text"}},
			})

			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedResponseError, got %v", err)
			}
		})
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %v", err)
				}
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %v", err)
				}
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rlErr *RateLimitError
				if !errors.As(err, &rlErr) {
					t.Fatalf("expected RateLimitError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			})

			p := NewOpenAIProvider("test-key", srv.URL, "gpt-4.1", true)
			_, err := p.TranslateBatch(context.Background(), BatchRequest{
				Items: []BatchItem{{ID: "a", Text: "text"}},
			})
			tt.check(t, err)
		})
	}
}

func TestOpenAIProvider_TranslateTextCleansReply(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, `Here is the translation: "Crash occurs on login"`)
	})

	p := NewOpenAIProvider("test-key", srv.URL, "gpt-4.1", true)
	got, err := p.TranslateText(context.Background(), "로그인 시 크래시 발생", PromptOptions{SourceLang: "ko"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Crash occurs on login" {
		t.Errorf("TranslateText = %q", got)
	}
}

func TestOpenAIProvider_SelectGlossaryIDs(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, `{"selected_ids":["Lobby","Matchmaking"]}`)
	})

	p := NewOpenAIProvider("test-key", srv.URL, "gpt-4.1", true)
	ids, err := p.SelectGlossaryIDs(context.Background(),
		[]string{"로비에서 매치메이킹이 실패합니다"},
		[]glossary.Term{
			{ID: "Lobby", En: "Lobby", Ko: "로비"},
			{ID: "Matchmaking", En: "Matchmaking", Ko: "매치메이킹"},
			{ID: "Vault", En: "Vault", Ko: "금고"},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "Lobby" || ids[1] != "Matchmaking" {
		t.Errorf("ids = %v", ids)
	}
}
