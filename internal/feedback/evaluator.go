// Package feedback scores executed actions against pre/post snapshots and
// maintains the learning context consumed by the decision engine.
package feedback

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/dm/netopt-go/internal/health"
	"github.com/dm/netopt-go/internal/model"
)

// expectation marks the metric directions an action is supposed to move.
type expectation struct {
	latencyDown   bool
	lossDown      bool
	bandwidthUp   bool
	cpuDown       bool
	memoryDown    bool
}

var expectations = map[model.ActionType]expectation{
	model.ActionOptimizeRouting:  {latencyDown: true},
	model.ActionReduceTraffic:    {latencyDown: true, lossDown: true},
	model.ActionLoadBalance:      {cpuDown: true},
	model.ActionClearCache:       {memoryDown: true},
	model.ActionRequestBandwidth: {bandwidthUp: true},
	model.ActionRestartService:   {cpuDown: true, memoryDown: true},
}

// Evaluator compares pre/post snapshots and scores each executed action.
// Safe for concurrent use.
type Evaluator struct {
	mu      sync.Mutex
	log     *slog.Logger
	history *model.Ring[model.FeedbackRecord]
	trends  *model.Ring[model.TrendPoint]
	now     func() time.Time
}

// New builds an evaluator retaining up to window feedback records.
func New(window int, log *slog.Logger) *Evaluator {
	return &Evaluator{
		log:     log.With("component", "feedback"),
		history: model.NewRing[model.FeedbackRecord](window),
		trends:  model.NewRing[model.TrendPoint](50),
		now:     time.Now,
	}
}

// Evaluate scores one decision's outcomes against the snapshots taken before
// and after execution. An empty outcome set yields a trivially successful
// record with zero improvement.
func (e *Evaluator) Evaluate(outcomes []model.ActionOutcome, pre, post model.Snapshot) model.FeedbackRecord {
	now := e.now()

	if len(outcomes) == 0 {
		rec := model.FeedbackRecord{
			OverallSuccess: true,
			Details:        "No actions to evaluate",
			Actions:        []model.ActionFeedback{},
			Timestamp:      now,
		}
		e.record(rec)
		return rec
	}

	deltas := computeDeltas(pre, post)

	var actions []model.ActionFeedback
	var sum float64
	for _, out := range outcomes {
		delta := deltas[out.Target]
		score, rating := effectiveness(out.Action, out.Success, delta)
		sum += score

		actions = append(actions, model.ActionFeedback{
			Action:           out.Action,
			Target:           out.Target,
			ExecutionSuccess: out.Success,
			Score:            score,
			Rating:           rating,
			Delta:            delta,
			Timestamp:        now,
		})

		switch {
		case score > 0.7:
			e.log.Info("action effective", "action", out.Action, "target", out.Target, "rating", rating)
		case score > 0.4:
			e.log.Info("action partially effective", "action", out.Action, "target", out.Target, "rating", rating)
		default:
			e.log.Warn("action ineffective", "action", out.Action, "target", out.Target, "rating", rating)
		}
	}

	avg := sum / float64(len(actions))
	improvement := health.NetworkScore(post) - health.NetworkScore(pre)

	rec := model.FeedbackRecord{
		OverallSuccess:   avg > 0.5,
		ImprovementScore: improvement,
		AvgEffectiveness: avg,
		Actions:          actions,
		Details:          summarize(actions, improvement),
		Timestamp:        now,
	}
	e.record(rec)
	return rec
}

// History returns retained feedback records, oldest first.
func (e *Evaluator) History() []model.FeedbackRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Items()
}

// Context returns the simplified view of the most recent records for the
// decision engine, at most 10 entries.
func (e *Evaluator) Context() []model.FeedbackEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	recent := e.history.Last(10)
	out := make([]model.FeedbackEntry, 0, len(recent))
	for _, rec := range recent {
		out = append(out, rec.Context())
	}
	return out
}

// TrendSummary analyzes recent trend points.
type TrendSummary struct {
	AvgImprovement   float64 `json:"average_improvement"`
	AvgEffectiveness float64 `json:"average_effectiveness"`
	Trend            string  `json:"trend"`
	DataPoints       int     `json:"data_points"`
}

// Trends summarizes the improvement trajectory over the last 10 evaluations.
// Returns ok=false when fewer than two data points exist.
func (e *Evaluator) Trends() (TrendSummary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.trends.Len() < 2 {
		return TrendSummary{}, false
	}
	recent := e.trends.Last(10)

	var impSum, effSum float64
	for _, p := range recent {
		impSum += p.Improvement
		effSum += p.Effectiveness
	}
	n := float64(len(recent))

	trend := "insufficient data"
	if len(recent) >= 5 {
		half := len(recent) / 2
		var firstSum, secondSum float64
		for _, p := range recent[:half] {
			firstSum += p.Improvement
		}
		for _, p := range recent[half:] {
			secondSum += p.Improvement
		}
		firstAvg := firstSum / float64(half)
		secondAvg := secondSum / float64(len(recent)-half)
		switch {
		case secondAvg > firstAvg+1:
			trend = "improving"
		case secondAvg < firstAvg-1:
			trend = "declining"
		default:
			trend = "stable"
		}
	}

	return TrendSummary{
		AvgImprovement:   impSum / n,
		AvgEffectiveness: effSum / n,
		Trend:            trend,
		DataPoints:       e.trends.Len(),
	}, true
}

func (e *Evaluator) record(rec model.FeedbackRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Push(rec)
	e.trends.Push(model.TrendPoint{
		Timestamp:     rec.Timestamp,
		Improvement:   rec.ImprovementScore,
		Effectiveness: rec.AvgEffectiveness,
	})
}

// computeDeltas pairs nodes present in both snapshots and scores each delta.
func computeDeltas(pre, post model.Snapshot) map[string]*model.MetricsDelta {
	out := make(map[string]*model.MetricsDelta)
	for _, before := range pre.Nodes {
		after, ok := post.Node(before.NodeID)
		if !ok {
			continue
		}
		d := model.Delta(before, after)

		var score float64
		if d.LatencyChange < 0 {
			score += math.Min(30, math.Abs(d.LatencyChange)*0.5)
		}
		if d.PacketLossChange < 0 {
			score += math.Min(25, math.Abs(d.PacketLossChange)*5)
		}
		if d.BandwidthChange > 0 {
			score += math.Min(20, d.BandwidthChange*0.05)
		}
		if d.CPUChange < 0 {
			score += math.Min(15, math.Abs(d.CPUChange)*0.5)
		}
		if d.MemoryChange < 0 {
			score += math.Min(10, math.Abs(d.MemoryChange)*0.4)
		}
		d.ImprovementScore = score
		d.Improved = score > 0
		out[d.NodeID] = &d
	}
	return out
}

// effectiveness scores one action in [0,1] and assigns its rating tier.
func effectiveness(a model.ActionType, success bool, delta *model.MetricsDelta) (float64, model.EffectivenessRating) {
	if !success {
		return 0.1, model.RatingFailed
	}
	if delta == nil {
		return 0.5, model.RatingUnknown
	}

	score := math.Min(1.0, math.Max(0, delta.ImprovementScore/100))

	if exp, ok := expectations[a]; ok {
		if exp.latencyDown && delta.LatencyChange < 0 {
			score += 0.1
		}
		if exp.lossDown && delta.PacketLossChange < 0 {
			score += 0.1
		}
		if exp.bandwidthUp && delta.BandwidthChange > 0 {
			score += 0.1
		}
		if exp.cpuDown && delta.CPUChange < 0 {
			score += 0.1
		}
		if exp.memoryDown && delta.MemoryChange < 0 {
			score += 0.1
		}
	}
	score = math.Min(1.0, score)

	switch {
	case score >= 0.8:
		return score, model.RatingHighly
	case score >= 0.6:
		return score, model.RatingEffective
	case score >= 0.4:
		return score, model.RatingPartial
	case score >= 0.2:
		return score, model.RatingLimited
	default:
		return score, model.RatingNone
	}
}

func summarize(actions []model.ActionFeedback, improvement float64) string {
	if len(actions) == 0 {
		return "No actions were taken."
	}
	effective := 0
	for _, a := range actions {
		if a.Score > 0.5 {
			effective++
		}
	}

	var note string
	switch {
	case improvement > 5:
		note = fmt.Sprintf("Network health improved by %.1f points.", improvement)
	case improvement > 0:
		note = fmt.Sprintf("Minor health improvement of %.1f points.", improvement)
	case improvement > -5:
		note = "Network health remained stable."
	default:
		note = fmt.Sprintf("Warning: Health decreased by %.1f points.", math.Abs(improvement))
	}
	return fmt.Sprintf("%d/%d actions were effective. %s", effective, len(actions), note)
}
