// Package ai implements the answer generator against the OpenAI chat
// completion API.
package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/windprak/steuerllm-benchmark/internal/domain"
)

// endOfTraceMarker delimits the reasoning trace some models emit before
// their final answer (e.g. DeepSeek-R1). Everything up to and including the
// first occurrence is discarded.
const endOfTraceMarker = "</think>"

const defaultSystemPrompt = "You are an expert in German tax law. " +
	"Answer the exam question precisely and completely, citing the relevant statutes."

// Config defines options for the OpenAI-backed generator. MaxTokens and
// Temperature default to the benchmark evaluation settings (4096, 0).
type Config struct {
	APIKey       string
	BaseURL      string // optional, for OpenAI-compatible endpoints
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
	Logger       zerolog.Logger
}

// Generator satisfies app.Generator via chat completions.
type Generator struct {
	client *openai.Client
	cfg    Config
	logger zerolog.Logger
}

// NewGenerator builds a generator using the provided configuration.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Temperature == 0 {
		// The SDK drops a zero temperature from the request body and the
		// API then samples at its own default. The smallest positive float
		// survives serialization and the API treats it as zero.
		cfg.Temperature = math.SmallestNonzeroFloat32
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

// Generate answers a single question. The reasoning trace, if any, is
// stripped so only the final answer is submitted.
func (g *Generator) Generate(ctx context.Context, q domain.Question) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(q)},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}

	answer := StripReasoningTrace(strings.TrimSpace(resp.Choices[0].Message.Content))
	g.logger.Debug().
		Str("question_id", q.ID).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("answer generated")
	return answer, nil
}

// StripReasoningTrace cuts at the first end-of-trace marker and returns the
// trimmed remainder. Without a marker the text is returned unchanged;
// nested or repeated markers are not interpreted.
func StripReasoningTrace(answer string) string {
	idx := strings.Index(answer, endOfTraceMarker)
	if idx == -1 {
		return answer
	}
	return strings.TrimSpace(answer[idx+len(endOfTraceMarker):])
}

func buildPrompt(q domain.Question) string {
	var b strings.Builder
	if q.Title != "" {
		fmt.Fprintf(&b, "%s\n", q.Title)
	}
	if q.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", q.Category)
	}
	if q.MaxScore > 0 {
		fmt.Fprintf(&b, "Maximum score: %g points\n", q.MaxScore)
	}
	b.WriteString("\n")
	b.WriteString(q.Question)
	return b.String()
}
