package feedback

import (
	"sort"
	"sync"
	"time"

	"github.com/dm/netopt-go/internal/model"
)

type targetStats struct {
	Attempts       int     `json:"attempts"`
	Successful     int     `json:"successful"`
	AvgImprovement float64 `json:"avg_improvement"`
}

type actionStats struct {
	totalAttempts      int
	successful         int
	totalEffectiveness float64
	totalImprovement   float64
	bestImprovement    float64
	worstImprovement   float64
	targets            map[string]*targetStats
}

// ActionStatistics is the aggregated view of one action's track record.
type ActionStatistics struct {
	TotalAttempts    int     `json:"total_attempts"`
	SuccessRate      float64 `json:"success_rate"`
	AvgEffectiveness float64 `json:"average_effectiveness"`
	AvgImprovement   float64 `json:"average_improvement"`
	BestImprovement  float64 `json:"best_improvement"`
	WorstImprovement float64 `json:"worst_improvement"`
	TargetCount      int     `json:"target_count"`
}

// Recommendation ranks one action for a given anomaly type based on history.
type Recommendation struct {
	Action          model.ActionType `json:"action"`
	SuccessRate     *float64         `json:"historical_success_rate"`
	Effectiveness   *float64         `json:"historical_effectiveness"`
	AvgImprovement  *float64         `json:"average_improvement"`
	Confidence      float64          `json:"confidence"`
	Recommended     bool             `json:"recommended"`
}

type healthPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	HealthScore  float64   `json:"health_score"`
	AnomalyCount int       `json:"anomaly_count"`
}

// HealthTrends summarizes recent health history.
type HealthTrends struct {
	AvgHealth    float64 `json:"average_health"`
	MinHealth    float64 `json:"min_health"`
	MaxHealth    float64 `json:"max_health"`
	AvgAnomalies float64 `json:"average_anomalies"`
	Trend        string  `json:"trend"`
	TrendDelta   float64 `json:"trend_delta"`
	DataPoints   int     `json:"data_points"`
}

// LearningSummary is the condensed learning state reported by the API.
type LearningSummary struct {
	TotalActionsTracked   int               `json:"total_actions_tracked"`
	TotalActionExecutions int               `json:"total_action_executions"`
	MostEffectiveActions  []RankedAction    `json:"most_effective_actions"`
	LeastEffectiveActions []RankedAction    `json:"least_effective_actions"`
	HealthTrend           string            `json:"health_trend"`
	AverageHealth         float64           `json:"average_health"`
}

// RankedAction pairs an action with its measured effectiveness.
type RankedAction struct {
	Action        model.ActionType `json:"action"`
	Effectiveness float64          `json:"effectiveness"`
}

var anomalyActionMap = map[model.AnomalyType][]model.ActionType{
	model.AnomalyHighLatency:    {model.ActionOptimizeRouting, model.ActionReduceTraffic, model.ActionLoadBalance},
	model.AnomalyHighPacketLoss: {model.ActionReduceTraffic, model.ActionOptimizeRouting},
	model.AnomalyHighCPU:        {model.ActionLoadBalance, model.ActionRestartService, model.ActionScaleUp},
	model.AnomalyHighMemory:     {model.ActionClearCache, model.ActionRestartService, model.ActionScaleUp},
	model.AnomalyLowBandwidth:   {model.ActionRequestBandwidth, model.ActionReduceTraffic},
}

// Tracker accumulates per-action statistics and health history across
// cycles. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	actions map[model.ActionType]*actionStats
	health  *model.Ring[healthPoint]
	now     func() time.Time
}

// NewTracker builds an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		actions: make(map[model.ActionType]*actionStats),
		health:  model.NewRing[healthPoint](500),
		now:     time.Now,
	}
}

// RecordActionResult folds one scored action into the statistics.
func (t *Tracker) RecordActionResult(action model.ActionType, target string, success bool, effectiveness, improvement float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, ok := t.actions[action]
	if !ok {
		stats = &actionStats{targets: make(map[string]*targetStats)}
		t.actions[action] = stats
	}

	stats.totalAttempts++
	if success {
		stats.successful++
	}
	stats.totalEffectiveness += effectiveness
	stats.totalImprovement += improvement
	if improvement > stats.bestImprovement {
		stats.bestImprovement = improvement
	}
	if improvement < stats.worstImprovement {
		stats.worstImprovement = improvement
	}

	ts, ok := stats.targets[target]
	if !ok {
		ts = &targetStats{}
		stats.targets[target] = ts
	}
	ts.Attempts++
	if success {
		ts.Successful++
	}
	ts.AvgImprovement += (improvement - ts.AvgImprovement) / float64(ts.Attempts)
}

// RecordHealthSnapshot appends one health observation to the trend history.
func (t *Tracker) RecordHealthSnapshot(healthScore float64, anomalyCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.health.Push(healthPoint{
		Timestamp:    t.now(),
		HealthScore:  healthScore,
		AnomalyCount: anomalyCount,
	})
}

// ActionStatistics reports aggregated stats for every action with history.
func (t *Tracker) ActionStatistics() map[model.ActionType]ActionStatistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[model.ActionType]ActionStatistics, len(t.actions))
	for action, s := range t.actions {
		if s.totalAttempts == 0 {
			continue
		}
		n := float64(s.totalAttempts)
		out[action] = ActionStatistics{
			TotalAttempts:    s.totalAttempts,
			SuccessRate:      float64(s.successful) / n,
			AvgEffectiveness: s.totalEffectiveness / n,
			AvgImprovement:   s.totalImprovement / n,
			BestImprovement:  s.bestImprovement,
			WorstImprovement: s.worstImprovement,
			TargetCount:      len(s.targets),
		}
	}
	return out
}

// Recommendations ranks candidate actions for an anomaly type by historical
// effectiveness. Actions with no history are recommended by default.
func (t *Tracker) Recommendations(anomaly model.AnomalyType) []Recommendation {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Recommendation
	for _, action := range anomalyActionMap[anomaly] {
		s, ok := t.actions[action]
		if ok && s.totalAttempts > 0 {
			n := float64(s.totalAttempts)
			successRate := float64(s.successful) / n
			eff := s.totalEffectiveness / n
			imp := s.totalImprovement / n
			out = append(out, Recommendation{
				Action:         action,
				SuccessRate:    &successRate,
				Effectiveness:  &eff,
				AvgImprovement: &imp,
				Confidence:     min(1.0, n/10),
				Recommended:    successRate > 0.5 && imp > 0,
			})
		} else {
			out = append(out, Recommendation{
				Action:      action,
				Confidence:  0,
				Recommended: true,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Recommended != b.Recommended {
			return a.Recommended
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return deref(a.Effectiveness) > deref(b.Effectiveness)
	})
	return out
}

// HealthTrends analyzes the last window health points. Returns ok=false when
// fewer than two points exist.
func (t *Tracker) HealthTrends(window int) (HealthTrends, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.health.Len() < 2 {
		return HealthTrends{}, false
	}
	recent := t.health.Last(window)

	out := HealthTrends{
		MinHealth:  recent[0].HealthScore,
		DataPoints: len(recent),
		Trend:      "insufficient data",
	}
	var healthSum, anomalySum float64
	for _, p := range recent {
		healthSum += p.HealthScore
		anomalySum += float64(p.AnomalyCount)
		if p.HealthScore < out.MinHealth {
			out.MinHealth = p.HealthScore
		}
		if p.HealthScore > out.MaxHealth {
			out.MaxHealth = p.HealthScore
		}
	}
	n := float64(len(recent))
	out.AvgHealth = healthSum / n
	out.AvgAnomalies = anomalySum / n

	if len(recent) >= 10 {
		half := len(recent) / 2
		var firstSum, secondSum float64
		for _, p := range recent[:half] {
			firstSum += p.HealthScore
		}
		for _, p := range recent[half:] {
			secondSum += p.HealthScore
		}
		out.TrendDelta = secondSum/float64(len(recent)-half) - firstSum/float64(half)
		switch {
		case out.TrendDelta > 5:
			out.Trend = "improving"
		case out.TrendDelta < -5:
			out.Trend = "declining"
		default:
			out.Trend = "stable"
		}
	}
	return out, true
}

// LearningSummary condenses tracked statistics and health trends.
func (t *Tracker) LearningSummary() LearningSummary {
	stats := t.ActionStatistics()
	trends, _ := t.HealthTrends(50)

	type pair struct {
		action model.ActionType
		stats  ActionStatistics
	}
	var sorted []pair
	var total int
	for a, s := range stats {
		sorted = append(sorted, pair{a, s})
		total += s.TotalAttempts
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].stats.AvgEffectiveness > sorted[j].stats.AvgEffectiveness
	})

	summary := LearningSummary{
		TotalActionsTracked:   len(stats),
		TotalActionExecutions: total,
		HealthTrend:           trends.Trend,
		AverageHealth:         trends.AvgHealth,
	}
	if summary.HealthTrend == "" {
		summary.HealthTrend = "unknown"
	}

	for i, p := range sorted {
		if i >= 3 {
			break
		}
		summary.MostEffectiveActions = append(summary.MostEffectiveActions, RankedAction{
			Action:        p.action,
			Effectiveness: p.stats.AvgEffectiveness,
		})
	}
	if len(sorted) >= 3 {
		for _, p := range sorted[len(sorted)-3:] {
			summary.LeastEffectiveActions = append(summary.LeastEffectiveActions, RankedAction{
				Action:        p.action,
				Effectiveness: p.stats.AvgEffectiveness,
			})
		}
	}
	return summary
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
