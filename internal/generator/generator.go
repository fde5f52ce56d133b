package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkoukk/tiktoken-go"
	goopenai "github.com/sashabaranov/go-openai"

	"quizrag/internal/domain"
	"quizrag/internal/logging"
)

const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultAPIKeyEnv = "GOOGLE_API_KEY"
	DefaultModel     = "gemini-2.5-flash"
)

// DefaultFallbackModels are tried in order when the preferred model is unavailable.
var DefaultFallbackModels = []string{
	"gemini-1.5-flash-8b",
	"gemini-1.5-flash-latest",
	"gemini-1.5-flash",
	"gemini-1.5-pro-latest",
	"gemini-1.5-pro",
	"gemini-pro",
}

var (
	ErrNoModel       = errors.New("no generation model could be initialized")
	ErrEmptyResponse = errors.New("model returned no completion")
)

type Config struct {
	BaseURL        string
	APIKey         string
	PreferredModel string
	FallbackModels []string
	Timeout        time.Duration
	Temperature    float32
	// MaxPromptTokens logs a warning for prompts above this many tokens; zero disables the check.
	MaxPromptTokens int
	Logger          *log.Logger
}

// Client generates quizzes and explanations through an OpenAI-compatible chat endpoint.
type Client struct {
	client      *goopenai.Client
	candidates  []string
	timeout     time.Duration
	temperature float32
	maxTokens   int
	logger      *log.Logger

	mu    sync.Mutex
	model string
}

var _ domain.Generator = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generator: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PreferredModel == "" {
		cfg.PreferredModel = DefaultModel
	}
	if cfg.FallbackModels == nil {
		cfg.FallbackModels = DefaultFallbackModels
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		client:      goopenai.NewClientWithConfig(oc),
		candidates:  Candidates(cfg.PreferredModel, cfg.FallbackModels),
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxPromptTokens,
		logger:      logger,
	}, nil
}

// Candidates returns preferred followed by fallbacks, without blanks or repeats.
func Candidates(preferred string, fallbacks []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range append([]string{preferred}, fallbacks...) {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Model returns the selected model, checking the candidates on first use.
// The first candidate the models endpoint knows about wins and is kept for the client's lifetime.
func (c *Client) Model(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != "" {
		return c.model, nil
	}
	var lastErr error
	for _, candidate := range c.candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, err := c.client.GetModel(ctx, candidate); err != nil {
			c.logger.Debug("model unavailable", "model", candidate, "err", err)
			lastErr = err
			continue
		}
		c.model = candidate
		c.logger.Info("using generation model", "model", candidate)
		return candidate, nil
	}
	if lastErr == nil {
		return "", ErrNoModel
	}
	return "", fmt.Errorf("%w: %w", ErrNoModel, lastErr)
}

func (c *Client) Quiz(ctx context.Context, retrieved, query string) (string, error) {
	return c.Generate(ctx, QuizPrompt(retrieved, query))
}

func (c *Client) Explain(ctx context.Context, retrieved, query string) (string, error) {
	return c.Generate(ctx, ExplainPrompt(retrieved, query))
}

// Generate sends prompt as a single user message and returns the first completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model, err := c.Model(ctx)
	if err != nil {
		return "", err
	}
	c.checkPrompt(model, prompt)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) checkPrompt(model, prompt string) {
	if c.maxTokens <= 0 && c.logger.GetLevel() > log.DebugLevel {
		return
	}
	n, err := CountTokens(prompt)
	switch {
	case err != nil:
		c.logger.Debug("could not count prompt tokens", "err", err)
	case c.maxTokens > 0 && n > c.maxTokens:
		c.logger.Warn("prompt exceeds token budget", "model", model, "tokens", n, "budget", c.maxTokens)
	default:
		c.logger.Debug("sending prompt", "model", model, "tokens", n)
	}
}

// CountTokens approximates the prompt size with the cl100k_base encoding.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
