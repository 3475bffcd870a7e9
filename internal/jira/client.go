// Package jira is a minimal REST v2 client covering the three calls the
// pipeline needs: fetching issue fields, writing them back, and discovering
// the project's reproduction-steps custom field.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// StepsFieldCandidates are known reproduction-steps custom field ids,
// checked in priority order before falling back to a name scan.
var StepsFieldCandidates = []string{"customfield_10237", "customfield_10399"}

var (
	reIssueKey     = regexp.MustCompile(`(?i)[A-Z][A-Z0-9]+-\d+`)
	reBareIssueKey = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]+-\d+$`)
)

// Client talks to one Jira site with basic auth.
type Client struct {
	baseURL  string
	email    string
	apiToken string
	client   *http.Client

	// steps field per project key, resolved once per invocation.
	// A cached "" means the project has no steps field.
	stepsFieldCache map[string]string
}

// NewClient creates a client for the given site. baseURL is the site root,
// e.g. "https://company.atlassian.net".
func NewClient(baseURL, email, apiToken string) *Client {
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		email:           email,
		apiToken:        apiToken,
		client:          &http.Client{Timeout: 15 * time.Second},
		stepsFieldCache: make(map[string]string),
	}
}

// FetchIssueFields returns the requested fields as flat text. Raw values are
// preferred; when a raw value is empty the rendered value is used instead.
// Fields that resolve to empty text are omitted from the result.
func (c *Client) FetchIssueFields(ctx context.Context, issueKey string, fields []string) (map[string]string, error) {
	if len(fields) == 0 {
		fields = []string{"summary", "description"}
	}

	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s?fields=%s&expand=renderedFields",
		c.baseURL, url.PathEscape(issueKey), url.QueryEscape(strings.Join(fields, ",")))

	var issue struct {
		Fields         map[string]any `json:"fields"`
		RenderedFields map[string]any `json:"renderedFields"`
	}
	if err := c.get(ctx, endpoint, &issue); err != nil {
		return nil, fmt.Errorf("failed to fetch issue %s: %w", issueKey, err)
	}

	result := make(map[string]string)
	for _, field := range fields {
		value := normalizeFieldValue(issue.Fields[field])
		if value == "" {
			value = normalizeFieldValue(issue.RenderedFields[field])
		}
		if value != "" {
			result[field] = value
		}
	}
	return result, nil
}

// UpdateIssueFields writes the payload back in a single PUT. An empty
// payload is a no-op.
func (c *Client) UpdateIssueFields(ctx context.Context, issueKey string, payload map[string]string) error {
	if len(payload) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]any{"fields": payload})
	if err != nil {
		return fmt.Errorf("failed to marshal update payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s", c.baseURL, url.PathEscape(issueKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email, c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("update of %s returned status %d: %s", issueKey, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// DetectStepsField resolves the reproduction-steps custom field for a
// project via the createmeta API: known candidate ids first, then any
// custom field whose name mentions both "step" and "reproduce". Returns ""
// when the project has no such field or the API call fails; the result is
// cached per project key.
func (c *Client) DetectStepsField(ctx context.Context, projectKey string) string {
	if cached, ok := c.stepsFieldCache[projectKey]; ok {
		return cached
	}

	fieldID := c.scanCreateMeta(ctx, projectKey)
	c.stepsFieldCache[projectKey] = fieldID
	return fieldID
}

func (c *Client) scanCreateMeta(ctx context.Context, projectKey string) string {
	endpoint := fmt.Sprintf("%s/rest/api/2/issue/createmeta?projectKeys=%s&expand=%s&issuetypeNames=%s",
		c.baseURL,
		url.QueryEscape(projectKey),
		url.QueryEscape("projects.issuetypes.fields"),
		url.QueryEscape("버그,Bug"))

	var meta struct {
		Projects []struct {
			IssueTypes []struct {
				Fields map[string]struct {
					Name string `json:"name"`
				} `json:"fields"`
			} `json:"issuetypes"`
		} `json:"projects"`
	}
	if err := c.get(ctx, endpoint, &meta); err != nil {
		return ""
	}

	for _, project := range meta.Projects {
		for _, issueType := range project.IssueTypes {
			for _, candidate := range StepsFieldCandidates {
				if _, ok := issueType.Fields[candidate]; ok {
					return candidate
				}
			}
			for fieldID, field := range issueType.Fields {
				name := strings.ToLower(field.Name)
				if strings.Contains(name, "step") && strings.Contains(name, "reproduce") {
					return fieldID
				}
			}
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// normalizeFieldValue flattens whatever shape Jira returns for a field into
// plain text: strings pass through, ADF documents are flattened, and lists
// are joined line by line.
func normalizeFieldValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		return strings.TrimSpace(flattenADF(v))
	case []any:
		var parts []string
		for _, item := range v {
			if s := normalizeFieldValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// flattenADF walks an Atlassian Document Format node tree and concatenates
// the text leaves. Paragraphs and headings contribute a trailing newline,
// hard breaks become newlines.
func flattenADF(node any) string {
	switch n := node.(type) {
	case map[string]any:
		nodeType, _ := n["type"].(string)
		if nodeType == "text" {
			text, _ := n["text"].(string)
			return text
		}
		if nodeType == "hardBreak" {
			return "\n"
		}
		var sb strings.Builder
		if content, ok := n["content"].([]any); ok {
			for _, child := range content {
				sb.WriteString(flattenADF(child))
			}
		}
		text := sb.String()
		if (nodeType == "paragraph" || nodeType == "heading") && text != "" {
			return text + "\n"
		}
		return text
	case []any:
		var sb strings.Builder
		for _, child := range n {
			sb.WriteString(flattenADF(child))
		}
		return sb.String()
	default:
		return ""
	}
}

// ParseIssueURL extracts the site base URL and issue key from a browse URL.
// The key is taken from the path segment after "browse" when present, else
// from the first issue-key-shaped token in the path.
func ParseIssueURL(issueURL string) (baseURL, issueKey string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(issueURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", "", fmt.Errorf("not a valid Jira issue URL: %q", issueURL)
	}

	baseURL = parsed.Scheme + "://" + parsed.Host

	segments := strings.Split(parsed.Path, "/")
	for i, segment := range segments {
		if segment == "browse" && i+1 < len(segments) && segments[i+1] != "" {
			issueKey = segments[i+1]
			break
		}
	}
	if issueKey == "" {
		issueKey = strings.ToUpper(reIssueKey.FindString(parsed.Path))
	}
	if issueKey == "" {
		return "", "", fmt.Errorf("no issue key found in URL: %q", issueURL)
	}
	return baseURL, issueKey, nil
}

// IsIssueKey reports whether ref looks like a bare issue key (e.g.
// "PUBG-1234") rather than a URL.
func IsIssueKey(ref string) bool {
	return reBareIssueKey.MatchString(strings.TrimSpace(ref))
}
