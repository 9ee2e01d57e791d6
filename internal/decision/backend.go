package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/model"
)

// Backend produces a raw completion for a system/user prompt pair.
type Backend interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// NewBackend selects a backend from config. An openai provider without an API
// key falls back to the mock backend.
func NewBackend(cfg config.LLMConfig) Backend {
	if cfg.Provider == "openai" && cfg.APIKey != "" {
		return NewOpenAIBackend(cfg)
	}
	return &MockBackend{}
}

// OpenAIBackend calls the chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	cfg    config.LLMConfig
}

func NewOpenAIBackend(cfg config.LLMConfig) *OpenAIBackend {
	return &OpenAIBackend{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.cfg.Model,
		Temperature: float32(b.cfg.Temperature),
		MaxTokens:   b.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

var nodeIDPattern = regexp.MustCompile(`node_\d+`)

// MockBackend answers like a reasoning model would, keyed off keywords in the
// prompt. Useful for development and demos without API access.
type MockBackend struct{}

func (b *MockBackend) Name() string { return "mock" }

func (b *MockBackend) Generate(_ context.Context, _, userPrompt string) (string, error) {
	lower := strings.ToLower(userPrompt)

	hasAnomalies := false
	for _, kw := range []string{"anomaly", "anomalies", "high latency", "packet loss", "high cpu", "high memory", "low bandwidth", "critical"} {
		if strings.Contains(lower, kw) {
			hasAnomalies = true
			break
		}
	}

	target := "node_0"
	seen := map[string]bool{}
	var nodes []string
	for _, id := range nodeIDPattern.FindAllString(lower, -1) {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	if len(nodes) > 0 {
		target = nodes[0]
	}

	var dec model.Decision
	if hasAnomalies {
		var actions []model.ActionItem
		if strings.Contains(lower, "latency") {
			actions = append(actions, model.ActionItem{
				Action:   model.ActionOptimizeRouting,
				Target:   target,
				Priority: model.PriorityHigh,
				Params:   map[string]any{"optimize_path": true},
			})
		}
		if strings.Contains(lower, "packet") || strings.Contains(lower, "loss") {
			actions = append(actions, model.ActionItem{
				Action:   model.ActionReduceTraffic,
				Target:   target,
				Priority: model.PriorityCritical,
				Params:   map[string]any{"throttle_percent": 25},
			})
		}
		if strings.Contains(lower, "cpu") {
			actions = append(actions, model.ActionItem{
				Action:   model.ActionLoadBalance,
				Target:   target,
				Priority: model.PriorityHigh,
				Params:   map[string]any{"redistribute": true},
			})
		}
		if strings.Contains(lower, "memory") {
			actions = append(actions, model.ActionItem{
				Action:   model.ActionClearCache,
				Target:   target,
				Priority: model.PriorityMedium,
				Params:   map[string]any{"aggressive": true},
			})
		}
		if strings.Contains(lower, "bandwidth") {
			actions = append(actions, model.ActionItem{
				Action:   model.ActionRequestBandwidth,
				Target:   target,
				Priority: model.PriorityMedium,
				Params:   map[string]any{"increase_percent": 50},
			})
		}
		if len(actions) == 0 {
			actions = append(actions, model.ActionItem{
				Action:   model.ActionOptimizeRouting,
				Target:   target,
				Priority: model.PriorityMedium,
				Params:   map[string]any{"optimize_path": true},
			})
		}
		if len(actions) > 3 {
			actions = actions[:3]
		}
		dec = model.Decision{
			ActionRequired: true,
			Reasoning:      fmt.Sprintf("Analysis detected network anomalies affecting %d node(s). The issues indicate potential congestion or resource constraints. Recommended actions prioritize immediate stability improvements.", max(1, len(nodes))),
			Actions:        actions,
			Confidence:     0.85,
		}
	} else {
		dec = model.Decision{
			ActionRequired: false,
			Reasoning:      "Network metrics are within acceptable ranges. No immediate action required. Continue monitoring for any emerging patterns.",
			Actions:        []model.ActionItem{},
			Confidence:     0.95,
		}
	}

	body, err := json.MarshalIndent(dec, "", "  ")
	if err != nil {
		return "", err
	}
	return "```json\n" + string(body) + "\n```", nil
}
