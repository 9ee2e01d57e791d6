package model

import "time"

// EffectivenessRating is the qualitative tier assigned to one action's
// effectiveness score.
type EffectivenessRating string

const (
	RatingFailed    EffectivenessRating = "Failed - Action did not execute successfully"
	RatingUnknown   EffectivenessRating = "Unknown - Could not measure improvement"
	RatingHighly    EffectivenessRating = "Highly Effective - Significant improvement observed"
	RatingEffective EffectivenessRating = "Effective - Noticeable improvement"
	RatingPartial   EffectivenessRating = "Partially Effective - Minor improvement"
	RatingLimited   EffectivenessRating = "Limited Effect - Minimal improvement"
	RatingNone      EffectivenessRating = "Ineffective - No improvement observed"
)

// ActionFeedback scores one executed action's effectiveness in [0,1].
type ActionFeedback struct {
	Action           ActionType          `json:"action"`
	Target           string              `json:"target"`
	ExecutionSuccess bool                `json:"execution_success"`
	Score            float64             `json:"effectiveness_score"`
	Rating           EffectivenessRating `json:"effectiveness_rating"`
	Delta            *MetricsDelta       `json:"improvement_details,omitempty"`
	Timestamp        time.Time           `json:"timestamp"`
}

// FeedbackRecord is the evaluation of one decision's outcome set against the
// pre/post snapshots. ImprovementScore is the network health delta (post
// minus pre) under the canonical scoring function.
type FeedbackRecord struct {
	OverallSuccess   bool             `json:"overall_success"`
	ImprovementScore float64          `json:"improvement_score"`
	AvgEffectiveness float64          `json:"average_effectiveness"`
	Actions          []ActionFeedback `json:"action_feedback"`
	Details          string           `json:"details"`
	Timestamp        time.Time        `json:"timestamp"`
}

// FeedbackEntry is the simplified read-only form handed to the decision
// engine as context for its next analysis.
type FeedbackEntry struct {
	Success     bool             `json:"success"`
	Improvement float64          `json:"improvement"`
	Details     string           `json:"details"`
	Actions     []ActionSnapshot `json:"actions,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ActionSnapshot is the minimal per-action view inside a FeedbackEntry.
type ActionSnapshot struct {
	Action    ActionType `json:"action"`
	Effective bool       `json:"effective"`
}

// Context converts a full feedback record into the simplified entry the
// decision engine consumes. The conversion copies all data; the engine never
// aliases evaluator state.
func (f FeedbackRecord) Context() FeedbackEntry {
	entry := FeedbackEntry{
		Success:     f.OverallSuccess,
		Improvement: f.ImprovementScore,
		Details:     f.Details,
		Timestamp:   f.Timestamp,
	}
	for _, af := range f.Actions {
		entry.Actions = append(entry.Actions, ActionSnapshot{
			Action:    af.Action,
			Effective: af.Score > 0.5,
		})
	}
	return entry
}

// TrendPoint is one entry of the feedback evaluator's trend series.
type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Improvement   float64   `json:"improvement"`
	Effectiveness float64   `json:"effectiveness"`
}
