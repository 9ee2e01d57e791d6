// Package action executes corrective actions against the network. Execution
// is simulated with per-action latencies and success rates.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dm/netopt-go/internal/model"
)

type actionSpec struct {
	successRate float64
	minDuration time.Duration
	maxDuration time.Duration
	description string
}

var specs = map[model.ActionType]actionSpec{
	model.ActionOptimizeRouting:  {0.85, 500 * time.Millisecond, 2000 * time.Millisecond, "Optimize network routing to reduce latency"},
	model.ActionReduceTraffic:    {0.90, 200 * time.Millisecond, 500 * time.Millisecond, "Throttle traffic to reduce congestion"},
	model.ActionLoadBalance:      {0.80, 1000 * time.Millisecond, 5000 * time.Millisecond, "Redistribute load across multiple nodes"},
	model.ActionClearCache:       {0.95, 100 * time.Millisecond, 300 * time.Millisecond, "Clear caches to free memory"},
	model.ActionRequestBandwidth: {0.70, 1000 * time.Millisecond, 3000 * time.Millisecond, "Request additional bandwidth allocation"},
	model.ActionRestartService:   {0.75, 5000 * time.Millisecond, 15000 * time.Millisecond, "Restart a service to clear issues"},
	model.ActionAlert:            {1.0, 50 * time.Millisecond, 100 * time.Millisecond, "Send an alert to operations team"},
	model.ActionScaleUp:          {0.85, 10000 * time.Millisecond, 30000 * time.Millisecond, "Scale up resources by adding instances"},
	model.ActionScaleDown:        {0.90, 5000 * time.Millisecond, 10000 * time.Millisecond, "Scale down resources by removing instances"},
}

// ActionInfo describes one available action for the catalog endpoint.
type ActionInfo struct {
	Action              model.ActionType `json:"action"`
	Description         string           `json:"description"`
	SuccessRate         float64          `json:"success_rate"`
	EstimatedDurationMS float64          `json:"estimated_duration_ms"`
}

// AvailableActions returns the full action catalog in declaration order.
func AvailableActions() []ActionInfo {
	out := make([]ActionInfo, 0, len(model.ActionTypes))
	for _, at := range model.ActionTypes {
		spec := specs[at]
		out = append(out, ActionInfo{
			Action:              at,
			Description:         spec.description,
			SuccessRate:         spec.successRate,
			EstimatedDurationMS: float64(spec.minDuration+spec.maxDuration) / 2 / float64(time.Millisecond),
		})
	}
	return out
}

// Record is one executed action kept in the executor's capped history.
type Record struct {
	Timestamp time.Time        `json:"timestamp"`
	Action    model.ActionType `json:"action"`
	Target    string           `json:"target"`
	Params    map[string]any   `json:"params,omitempty"`
	Success   bool             `json:"success"`
	Duration  time.Duration    `json:"duration_ms"`
}

// Executor runs action items. Safe for concurrent use.
type Executor struct {
	mu      sync.Mutex
	dryRun  bool
	rng     *rand.Rand
	log     *slog.Logger
	history *model.Ring[Record]
	sleep   func(ctx context.Context, d time.Duration) error
}

// New builds an executor. Pass a fixed-seed source in tests for deterministic
// outcomes.
func New(dryRun bool, src rand.Source, log *slog.Logger) *Executor {
	return &Executor{
		dryRun:  dryRun,
		rng:     rand.New(src),
		log:     log.With("component", "action"),
		history: model.NewRing[Record](100),
		sleep:   sleepCtx,
	}
}

// DisableDelay makes execution instantaneous while keeping success rolls and
// context handling. Intended for tests and fast demo cycles.
func (e *Executor) DisableDelay() {
	e.sleep = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute runs one action item and reports its outcome. An unknown action or
// an expired context yields a failed outcome, never an error.
func (e *Executor) Execute(ctx context.Context, item model.ActionItem) model.ActionOutcome {
	start := time.Now()

	if !item.Action.Valid() {
		return model.ActionOutcome{
			Action:    item.Action,
			Target:    item.Target,
			Success:   false,
			Message:   fmt.Sprintf("Unknown action type: %s", item.Action),
			Timestamp: start,
		}
	}

	if e.dryRun {
		e.log.Info("dry run", "action", item.Action, "target", item.Target)
		return model.ActionOutcome{
			Action:    item.Action,
			Target:    item.Target,
			Success:   true,
			Message:   fmt.Sprintf("[DRY RUN] Would execute %s on %s", item.Action, item.Target),
			Timestamp: start,
		}
	}

	outcome := e.simulate(ctx, item)
	outcome.Duration = time.Since(start)
	outcome.Timestamp = start

	e.mu.Lock()
	e.history.Push(Record{
		Timestamp: start,
		Action:    item.Action,
		Target:    item.Target,
		Params:    item.Params,
		Success:   outcome.Success,
		Duration:  outcome.Duration,
	})
	e.mu.Unlock()

	e.log.Info("action executed",
		"action", item.Action,
		"target", item.Target,
		"success", outcome.Success,
		"duration", outcome.Duration)
	return outcome
}

func (e *Executor) simulate(ctx context.Context, item model.ActionItem) model.ActionOutcome {
	spec := specs[item.Action]

	e.mu.Lock()
	dur := spec.minDuration + time.Duration(e.rng.Float64()*float64(spec.maxDuration-spec.minDuration))
	roll := e.rng.Float64()
	e.mu.Unlock()

	if err := e.sleep(ctx, dur); err != nil {
		return model.ActionOutcome{
			Action:  item.Action,
			Target:  item.Target,
			Success: false,
			Message: fmt.Sprintf("Action timed out: %s on %s", item.Action, item.Target),
		}
	}

	success := roll < spec.successRate
	msg := failureMessage(item.Action, item.Target)
	if success {
		msg = successMessage(item.Action, item.Target, item.Params)
	}
	return model.ActionOutcome{
		Action:  item.Action,
		Target:  item.Target,
		Success: success,
		Message: msg,
	}
}

// History returns the most recent execution records, oldest first.
func (e *Executor) History(limit int) []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Last(limit)
}

func successMessage(a model.ActionType, target string, params map[string]any) string {
	switch a {
	case model.ActionOptimizeRouting:
		return fmt.Sprintf("Successfully optimized routing for %s. New path established.", target)
	case model.ActionReduceTraffic:
		return fmt.Sprintf("Traffic reduced on %s by %v%%.", target, paramOr(params, "throttle_percent", 20))
	case model.ActionLoadBalance:
		return fmt.Sprintf("Load balanced across nodes from %s. Traffic redistributed.", target)
	case model.ActionClearCache:
		return fmt.Sprintf("Cache cleared on %s. Memory freed.", target)
	case model.ActionRequestBandwidth:
		return fmt.Sprintf("Bandwidth increased on %s by %v%%.", target, paramOr(params, "increase_percent", 50))
	case model.ActionRestartService:
		return fmt.Sprintf("Service on %s restarted successfully.", target)
	case model.ActionAlert:
		return fmt.Sprintf("Alert sent for %s.", target)
	case model.ActionScaleUp:
		return fmt.Sprintf("Scaled up %s. New instance launched.", target)
	case model.ActionScaleDown:
		return fmt.Sprintf("Scaled down %s. Instance terminated.", target)
	}
	return fmt.Sprintf("Action %s completed on %s", a, target)
}

func failureMessage(a model.ActionType, target string) string {
	switch a {
	case model.ActionOptimizeRouting:
		return fmt.Sprintf("Failed to optimize routing for %s: No alternate path found.", target)
	case model.ActionReduceTraffic:
		return fmt.Sprintf("Failed to reduce traffic on %s: Minimum threshold reached.", target)
	case model.ActionLoadBalance:
		return fmt.Sprintf("Failed to load balance from %s: No available capacity.", target)
	case model.ActionClearCache:
		return fmt.Sprintf("Failed to clear cache on %s: Service unavailable.", target)
	case model.ActionRequestBandwidth:
		return fmt.Sprintf("Failed to increase bandwidth on %s: Provider limit reached.", target)
	case model.ActionRestartService:
		return fmt.Sprintf("Failed to restart service on %s: Dependencies not ready.", target)
	case model.ActionAlert:
		return fmt.Sprintf("Failed to send alert for %s: Notification service error.", target)
	case model.ActionScaleUp:
		return fmt.Sprintf("Failed to scale up %s: Resource quota exceeded.", target)
	case model.ActionScaleDown:
		return fmt.Sprintf("Failed to scale down %s: Minimum instances reached.", target)
	}
	return fmt.Sprintf("Action %s failed on %s", a, target)
}

func paramOr(params map[string]any, key string, def any) any {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
