// Package schedule turns free-text case details into a visit schedule by
// relaying them to a chat completion provider and pulling the first JSON
// object out of the reply.
package schedule

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/qpig0218/Rootplanner/internal/metrics"
	prompt "github.com/qpig0218/Rootplanner/internal/prompts/schedule"
	"github.com/qpig0218/Rootplanner/internal/providers"
	"github.com/qpig0218/Rootplanner/internal/svcctx"
)

// Completion parameters sent with every schedule request.
const (
	MaxTokens   = 2000
	Temperature = 0.3
)

// Config holds the planner's dependencies. Client may be nil when the
// provider is not configured; Plan then fails with ErrProviderNotConfigured.
type Config struct {
	Client     providers.LLMClient
	Deployment string
	Validator  *Validator        // optional, advisory
	Metrics    *metrics.Recorder // optional
	Logger     *slog.Logger
}

// Planner relays case details to the completion provider.
// It holds no per-request state and is safe for concurrent use.
type Planner struct {
	client     providers.LLMClient
	deployment string
	validator  *Validator
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// Result is the outcome of a successful completion call. Schedule is nil
// when the reply contained no parseable object; RawResponse is always the
// verbatim reply text.
type Result struct {
	Schedule    json.RawMessage `json:"schedule"`
	RawResponse string          `json:"rawResponse"`
}

// NewPlanner creates a planner from cfg.
func NewPlanner(cfg Config) *Planner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		client:     cfg.Client,
		deployment: strings.TrimSpace(cfg.Deployment),
		validator:  cfg.Validator,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Ready returns nil when the planner can reach a provider, or the
// configuration error Plan would return.
func (p *Planner) Ready() error {
	if p.client == nil {
		return ErrProviderNotConfigured
	}
	if p.deployment == "" {
		return ErrDeploymentNotConfigured
	}
	return nil
}

// Provider returns the configured provider name, or "" when unset.
func (p *Planner) Provider() string {
	if p.client == nil {
		return ""
	}
	return p.client.Name()
}

// Plan requests a schedule for caseDetails. Configuration is checked before
// input. A reply without a usable object is not an error: the result then
// carries a nil Schedule and the raw text.
func (p *Planner) Plan(ctx context.Context, caseDetails string) (*Result, error) {
	if err := p.Ready(); err != nil {
		p.metrics.RecordOutcome(metrics.OutcomeNotConfigured)
		return nil, err
	}
	if strings.TrimSpace(caseDetails) == "" {
		p.metrics.RecordOutcome(metrics.OutcomeInvalid)
		return nil, ErrEmptyCaseDetails
	}

	logger := svcctx.LoggerFrom(ctx, p.logger)
	req := &providers.ChatRequest{
		Model: p.deployment,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: prompt.SystemPrompt()},
			{Role: providers.RoleUser, Content: prompt.UserPrompt(caseDetails)},
		},
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		RequestID:   svcctx.RequestIDFrom(ctx),
	}

	start := time.Now()
	chat, err := p.client.Chat(ctx, req)
	p.metrics.RecordLLMCall(p.client.Name(), chat, time.Since(start).Seconds(), err)
	if err != nil {
		logger.Error("completion call failed",
			"provider", p.client.Name(),
			"deployment", p.deployment,
			"error", err)
		p.metrics.RecordOutcome(metrics.OutcomeProviderError)
		return nil, &ProviderError{Provider: p.client.Name(), Err: err}
	}

	result := &Result{}
	if chat != nil {
		result.RawResponse = chat.Content
		logger.Debug("completion received",
			"provider", chat.Provider,
			"model", chat.ModelUsed,
			"prompt_tokens", chat.PromptTokens,
			"completion_tokens", chat.CompletionTokens,
			"duration", chat.ExecutionTime)
	}

	block, ok := ExtractJSONBlock(result.RawResponse)
	if !ok {
		logger.Info("no JSON object in completion", "response_len", len(result.RawResponse))
		p.metrics.RecordOutcome(metrics.OutcomeNoJSON)
		return result, nil
	}

	parsed, err := parseBlock(block)
	if err != nil {
		logger.Warn("JSON parse failed", "error", err)
		p.metrics.RecordOutcome(metrics.OutcomeParseFailed)
		return result, nil
	}
	result.Schedule = parsed

	if p.validator != nil {
		if err := p.validator.Validate(parsed); err != nil {
			logger.Warn("schedule failed schema validation", "error", err)
			p.metrics.RecordSchemaViolation()
		}
	}

	p.metrics.RecordOutcome(metrics.OutcomeScheduled)
	return result, nil
}

// parseBlock checks that block is a JSON document and returns it as-is,
// keeping every field the model produced.
func parseBlock(block string) (json.RawMessage, error) {
	var v any
	if err := json.Unmarshal([]byte(block), &v); err != nil {
		return nil, err
	}
	return json.RawMessage(block), nil
}
