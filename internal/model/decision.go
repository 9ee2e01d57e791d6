package model

// ActionType is the fixed vocabulary of corrective actions the system can
// issue. The set is shared between the decision engine, the executor, and the
// API boundary.
type ActionType string

const (
	ActionOptimizeRouting  ActionType = "optimize_routing"
	ActionReduceTraffic    ActionType = "reduce_traffic"
	ActionLoadBalance      ActionType = "load_balance"
	ActionClearCache       ActionType = "clear_cache"
	ActionRequestBandwidth ActionType = "request_bandwidth"
	ActionRestartService   ActionType = "restart_service"
	ActionAlert            ActionType = "alert"
	ActionScaleUp          ActionType = "scale_up"
	ActionScaleDown        ActionType = "scale_down"
)

// ActionTypes lists every recognized action in declaration order.
var ActionTypes = []ActionType{
	ActionOptimizeRouting,
	ActionReduceTraffic,
	ActionLoadBalance,
	ActionClearCache,
	ActionRequestBandwidth,
	ActionRestartService,
	ActionAlert,
	ActionScaleUp,
	ActionScaleDown,
}

// Valid reports whether a is part of the fixed action vocabulary.
func (a ActionType) Valid() bool {
	for _, known := range ActionTypes {
		if a == known {
			return true
		}
	}
	return false
}

// Priority orders action items within a plan.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ActionItem is one entry of an action plan: what to do, where, and how
// urgently. Params is an opaque key-value mapping interpreted by the executor.
type ActionItem struct {
	Action   ActionType     `json:"action"`
	Target   string         `json:"target"`
	Priority Priority       `json:"priority"`
	Params   map[string]any `json:"params,omitempty"`
}

// Decision is a bounded action plan produced for one cycle. Immutable once
// returned by the engine.
type Decision struct {
	ActionRequired bool         `json:"action_required"`
	Reasoning      string       `json:"reasoning"`
	Actions        []ActionItem `json:"recommended_actions"`
	Confidence     float64      `json:"confidence"`
	// Fallback marks decisions produced by the rule table after a reasoning
	// backend failure; ParseError marks decisions degraded by unparseable
	// backend output.
	Fallback   bool `json:"fallback,omitempty"`
	ParseError bool `json:"parse_error,omitempty"`
}
