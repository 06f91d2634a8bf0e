package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/utils"
)

// AIClient is the text-completion capability the mapper and the PERT
// generator consume: prompt in, text out, bounded by the request context.
type AIClient interface {
	Chat(ctx context.Context, messages []AIMessage, opts *AIOptions) (*AICompletion, error)
	Model() string
}

type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AIOptions struct {
	Temperature float32
	MaxTokens   int
}

type AICompletion struct {
	Content string
}

type aiClient struct {
	httpClient *http.Client
	log        *logger.Logger
	apiKey     string
	baseURL    string
	chatModel  string
	maxRetries int
}

func NewAIClient(log *logger.Logger) (AIClient, error) {
	serviceLog := log.With("service", "AIClient")
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log)
	chatModel := utils.GetEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini", log)
	timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 2, log)

	return &aiClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		log:        serviceLog,
		apiKey:     apiKey,
		baseURL:    baseURL,
		chatModel:  chatModel,
		maxRetries: maxRetries,
	}, nil
}

func (c *aiClient) Model() string { return c.chatModel }

type chatCompletionRequest struct {
	Model       string      `json:"model"`
	Messages    []AIMessage `json:"messages"`
	Temperature float32     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *aiClient) Chat(ctx context.Context, messages []AIMessage, opts *AIOptions) (*AICompletion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages given")
	}

	reqBody := chatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
	}
	if opts != nil {
		reqBody.Temperature = opts.Temperature
		reqBody.MaxTokens = opts.MaxTokens
	}

	backoff := 1 * time.Second
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		completion, retryable, err := c.doChat(ctx, reqBody)
		if err == nil {
			return completion, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxRetries {
			break
		}

		c.log.Warn("AI chat request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", backoff.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (c *aiClient) doChat(ctx context.Context, reqBody chatCompletionRequest) (*AICompletion, bool, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failures are worth one more try.
		return nil, true, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, true, readErr
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("ai provider http %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("ai provider http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, fmt.Errorf("ai provider decode error: %w", err)
	}
	if parsed.Error != nil {
		return nil, false, fmt.Errorf("ai provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, false, fmt.Errorf("ai provider returned no choices")
	}
	return &AICompletion{Content: parsed.Choices[0].Message.Content}, false, nil
}
