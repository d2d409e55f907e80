package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// errRejected marks responses that must not be retried (4xx other than 429).
var errRejected = errors.New("request rejected")

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey     string        // Required: Google AI API key
	BaseURL    string        // Default: the SDK's Gemini API endpoint
	Model      string        // Default: DefaultModel
	Timeout    time.Duration // Default: 120s
	MaxRetries int           // Default: 3
	RetryDelay time.Duration // Default: 500ms
}

// GeminiClient implements Model on the Gemini generateContent API.
type GeminiClient struct {
	client     *genai.Client
	httpClient *http.Client
	model      string
	retrier    retry.Retry[Decision]
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(config GeminiConfig) (*GeminiClient, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := config.RetryDelay
	if retryDelay == 0 {
		retryDelay = 500 * time.Millisecond
	}

	httpClient := &http.Client{Timeout: timeout}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimRight(config.BaseURL, "/"),
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		httpClient: httpClient,
		model:      model,
		retrier: retry.New[Decision](retry.Config{
			MaxAttempts:        maxRetries,
			InitialDelay:       retryDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{errRejected, ErrNoCandidates},
		}),
	}, nil
}

// Name returns the configured model name.
func (c *GeminiClient) Name() string {
	return c.model
}

// Decide sends the prompt with the tool declarations and returns the first
// function call in the response, or the concatenated text when there is none.
func (c *GeminiClient) Decide(ctx context.Context, prompt string, tools []FunctionDeclaration) (Decision, error) {
	config := &genai.GenerateContentConfig{}
	if len(tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, tool := range tools {
			declaration := &genai.FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
			}
			if len(tool.Parameters) > 0 {
				declaration.ParametersJsonSchema = tool.Parameters
			}
			declarations = append(declarations, declaration)
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}
	contents := genai.Text(prompt)

	return c.retrier.Do(ctx, func(ctx context.Context) (Decision, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return Decision{}, classify(err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return Decision{}, ErrNoCandidates
		}
		return decisionFrom(resp.Candidates[0].Content)
	})
}

// classify marks client errors other than rate limiting as not retryable.
func classify(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return fmt.Errorf("%w: gemini error (status %d): %v", errRejected, code, err)
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

func decisionFrom(content *genai.Content) (Decision, error) {
	var text strings.Builder
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			args := json.RawMessage("{}")
			if len(part.FunctionCall.Args) > 0 {
				raw, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return Decision{}, fmt.Errorf("%w: encoding function args: %v", errRejected, err)
				}
				args = raw
			}
			return Decision{Call: &FunctionCall{Name: part.FunctionCall.Name, Args: args}}, nil
		}
		text.WriteString(part.Text)
	}
	return Decision{Text: text.String()}, nil
}
