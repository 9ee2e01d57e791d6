// Package decision turns an observed network state into a bounded action
// plan, using a reasoning backend with a rule-based fallback.
package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/model"
)

// Engine owns a reasoning backend and a bounded feedback context. Safe for
// concurrent use.
type Engine struct {
	mu       sync.Mutex
	backend  Backend
	cfg      config.DecisionConfig
	log      *slog.Logger
	feedback *model.Ring[model.FeedbackEntry]
}

// New builds an engine around the given backend.
func New(backend Backend, cfg config.DecisionConfig, log *slog.Logger) *Engine {
	return &Engine{
		backend:  backend,
		cfg:      cfg,
		log:      log.With("component", "decision"),
		feedback: model.NewRing[model.FeedbackEntry](20),
	}
}

// BackendName reports which backend the engine is wired to.
func (e *Engine) BackendName() string { return e.backend.Name() }

// RecordFeedback appends an evaluation outcome to the engine's context so the
// next decision can account for it.
func (e *Engine) RecordFeedback(entry model.FeedbackEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.feedback.Push(entry)
	if entry.Success {
		e.log.Info("previous actions were effective", "improvement", entry.Improvement)
	} else {
		e.log.Warn("previous actions were not effective", "details", entry.Details)
	}
}

// FeedbackContext returns a copy of the current feedback window, oldest first.
func (e *Engine) FeedbackContext() []model.FeedbackEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feedback.Items()
}

// Decide analyzes the snapshot and anomalies and returns an action plan.
// A healthy network with no anomalies short-circuits without consulting the
// backend. Backend errors degrade to the rule table; unparseable backend
// output degrades to a no-op plan flagged with ParseError. Decide itself
// never returns an error.
func (e *Engine) Decide(ctx context.Context, snap model.Snapshot, anomalies []model.Anomaly, healthScore float64) model.Decision {
	if len(anomalies) == 0 && healthScore > 90 {
		e.log.Info("network is healthy, no action required", "health", healthScore)
		return model.Decision{
			ActionRequired: false,
			Reasoning:      "Network metrics are within normal ranges",
			Actions:        []model.ActionItem{},
			Confidence:     1.0,
		}
	}

	prompt := buildPrompt(snap, anomalies, healthScore, e.FeedbackContext())

	raw, err := e.backend.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		e.log.Error("backend analysis failed, using fallback rules", "err", err)
		return e.fallback(anomalies)
	}

	dec := e.parse(raw)
	e.log.Info("decision made",
		"action_required", dec.ActionRequired,
		"actions", len(dec.Actions),
		"confidence", dec.Confidence)
	return dec
}

// parse extracts the JSON plan from a raw completion. Accepts a fenced
// ```json block or the widest brace-delimited span.
func (e *Engine) parse(raw string) model.Decision {
	jsonStr, err := extractJSON(raw)
	if err == nil {
		// action_required is a pointer so that a plan omitting the field is
		// treated as actionable rather than silently dropped.
		var plan struct {
			ActionRequired *bool              `json:"action_required"`
			Reasoning      string             `json:"reasoning"`
			Actions        []model.ActionItem `json:"recommended_actions"`
			Confidence     float64            `json:"confidence"`
		}
		uerr := json.Unmarshal([]byte(jsonStr), &plan)
		if uerr == nil {
			dec := model.Decision{
				ActionRequired: true,
				Reasoning:      plan.Reasoning,
				Actions:        plan.Actions,
				Confidence:     plan.Confidence,
			}
			if plan.ActionRequired != nil {
				dec.ActionRequired = *plan.ActionRequired
			}
			if dec.Reasoning == "" {
				dec.Reasoning = "LLM analysis"
			}
			if dec.Confidence == 0 {
				dec.Confidence = 0.7
			}
			if dec.Actions == nil {
				dec.Actions = []model.ActionItem{}
			}
			if len(dec.Actions) > e.cfg.MaxActionsPerCycle {
				dec.Actions = dec.Actions[:e.cfg.MaxActionsPerCycle]
			}
			return dec
		}
		err = fmt.Errorf("unmarshal plan: %w", uerr)
	}

	e.log.Warn("failed to parse backend response", "err", err)
	reasoning := raw
	if len(reasoning) > 500 {
		reasoning = reasoning[:500]
	}
	return model.Decision{
		ActionRequired: true,
		Reasoning:      reasoning,
		Actions:        []model.ActionItem{},
		Confidence:     0.5,
		ParseError:     true,
	}
}

func extractJSON(raw string) (string, error) {
	if i := strings.Index(raw, "```json"); i >= 0 {
		rest := raw[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j]), nil
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}
	return "", fmt.Errorf("no JSON found in response")
}

// fallbackRules maps each anomaly type to a fixed remediation.
var fallbackRules = map[model.AnomalyType]func(model.Anomaly) model.ActionItem{
	model.AnomalyHighLatency: func(a model.Anomaly) model.ActionItem {
		prio := model.PriorityMedium
		if a.Severity == model.SeverityCritical {
			prio = model.PriorityHigh
		}
		return model.ActionItem{
			Action:   model.ActionOptimizeRouting,
			Target:   a.NodeID,
			Priority: prio,
			Params:   map[string]any{"optimize_path": true},
		}
	},
	model.AnomalyHighPacketLoss: func(a model.Anomaly) model.ActionItem {
		return model.ActionItem{
			Action:   model.ActionReduceTraffic,
			Target:   a.NodeID,
			Priority: model.PriorityCritical,
			Params:   map[string]any{"throttle_percent": 30},
		}
	},
	model.AnomalyHighCPU: func(a model.Anomaly) model.ActionItem {
		return model.ActionItem{
			Action:   model.ActionLoadBalance,
			Target:   a.NodeID,
			Priority: model.PriorityHigh,
			Params:   map[string]any{"redistribute": true},
		}
	},
	model.AnomalyHighMemory: func(a model.Anomaly) model.ActionItem {
		return model.ActionItem{
			Action:   model.ActionClearCache,
			Target:   a.NodeID,
			Priority: model.PriorityMedium,
			Params:   map[string]any{"aggressive": a.Severity == model.SeverityCritical},
		}
	},
	model.AnomalyLowBandwidth: func(a model.Anomaly) model.ActionItem {
		return model.ActionItem{
			Action:   model.ActionRequestBandwidth,
			Target:   a.NodeID,
			Priority: model.PriorityMedium,
			Params:   map[string]any{"increase_percent": 50},
		}
	},
}

// fallback builds a rule-based plan from the top anomalies.
func (e *Engine) fallback(anomalies []model.Anomaly) model.Decision {
	var actions []model.ActionItem
	limit := min(3, len(anomalies))
	for _, a := range anomalies[:limit] {
		if rule, ok := fallbackRules[a.Type]; ok {
			actions = append(actions, rule(a))
		}
	}
	return model.Decision{
		ActionRequired: len(actions) > 0,
		Reasoning:      fmt.Sprintf("Rule-based decision triggered by %d anomalies", len(anomalies)),
		Actions:        actions,
		Confidence:     0.6,
		Fallback:       true,
	}
}
