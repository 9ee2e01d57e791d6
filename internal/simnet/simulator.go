// Package simnet generates synthetic network telemetry with injectable
// randomness, background events, and operator-triggered scenarios.
package simnet

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/model"
)

// EventEffects is the metric shift an event applies to a node.
type EventEffects struct {
	Latency     float64 `json:"latency,omitempty"`
	Bandwidth   float64 `json:"bandwidth,omitempty"`
	PacketLoss  float64 `json:"packet_loss,omitempty"`
	CPUUsage    float64 `json:"cpu_usage,omitempty"`
	MemoryUsage float64 `json:"memory_usage,omitempty"`
	Connections int     `json:"connections,omitempty"`
}

// Event is a named disturbance that may fire on a node during sampling.
type Event struct {
	Name        string
	Probability float64
	Effects     EventEffects
}

// EventRecord captures an event firing on a node.
type EventRecord struct {
	Timestamp time.Time    `json:"timestamp"`
	NodeID    string       `json:"node_id"`
	Event     string       `json:"event"`
	Effects   EventEffects `json:"effects"`
}

// ScenarioResult reports what a triggered scenario touched.
type ScenarioResult struct {
	Scenario      string   `json:"scenario"`
	AffectedNodes []string `json:"affected_nodes"`
	Message       string   `json:"message"`
}

var backgroundEvents = []Event{
	{Name: "traffic_spike", Probability: 0.15, Effects: EventEffects{Latency: 50, Bandwidth: -200, CPUUsage: 20, Connections: 50}},
	{Name: "packet_storm", Probability: 0.08, Effects: EventEffects{PacketLoss: 5, Latency: 30, Bandwidth: -100}},
	{Name: "memory_leak", Probability: 0.05, Effects: EventEffects{MemoryUsage: 25, CPUUsage: 10}},
	{Name: "ddos_attempt", Probability: 0.03, Effects: EventEffects{Latency: 100, PacketLoss: 10, Connections: 200, CPUUsage: 40}},
	{Name: "link_degradation", Probability: 0.10, Effects: EventEffects{Bandwidth: -300, Latency: 20}},
	{Name: "cpu_intensive_task", Probability: 0.12, Effects: EventEffects{CPUUsage: 35, MemoryUsage: 15}},
}

// Scenarios lists the names TriggerScenario accepts.
var Scenarios = []string{"high_traffic", "outage", "gradual_degradation", "recovery", "normal"}

// recovery effects applied to the base state when an action succeeds.
var actionEffects = map[model.ActionType]EventEffects{
	model.ActionOptimizeRouting:  {Latency: -20, PacketLoss: -0.5},
	model.ActionReduceTraffic:    {Bandwidth: 100, Latency: -10, CPUUsage: -10},
	model.ActionLoadBalance:      {CPUUsage: -15, Latency: -5},
	model.ActionClearCache:       {MemoryUsage: -20, CPUUsage: -5},
	model.ActionRequestBandwidth: {Bandwidth: 200},
	model.ActionRestartService:   {CPUUsage: -30, MemoryUsage: -25, Latency: -15},
}

// Simulator produces snapshots for a fixed node set. Safe for concurrent use.
type Simulator struct {
	mu           sync.Mutex
	cfg          config.SimulationConfig
	rng          *rand.Rand
	nodes        []string
	baseState    map[string]model.NodeMetrics
	activeEvents map[string][]Event
	eventLog     *model.Ring[EventRecord]
}

// New builds a simulator seeded from src. Pass a fixed-seed source in tests
// for reproducible telemetry.
func New(cfg config.SimulationConfig, src rand.Source) *Simulator {
	s := &Simulator{
		cfg:          cfg,
		rng:          rand.New(src),
		activeEvents: make(map[string][]Event),
		eventLog:     model.NewRing[EventRecord](100),
	}
	for i := 0; i < cfg.Nodes; i++ {
		s.nodes = append(s.nodes, fmt.Sprintf("node_%d", i))
	}
	s.baseState = s.initBaseState()
	return s
}

func (s *Simulator) initBaseState() map[string]model.NodeMetrics {
	base := make(map[string]model.NodeMetrics, len(s.nodes))
	for _, id := range s.nodes {
		base[id] = model.NodeMetrics{
			NodeID:      id,
			Latency:     s.cfg.BaseLatency + s.uniform(-5, 5),
			Bandwidth:   s.cfg.BaseBandwidth + s.uniform(-100, 100),
			PacketLoss:  s.cfg.BasePacketLoss + s.uniform(0, 0.5),
			CPUUsage:    s.uniform(20, 50),
			MemoryUsage: s.uniform(30, 60),
			Connections: 10 + s.rng.IntN(91),
		}
	}
	return base
}

// Nodes returns the simulated node IDs.
func (s *Simulator) Nodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Sample produces one snapshot: base state plus noise, random background
// events, active scenario events, then clamped to valid ranges.
func (s *Simulator) Sample() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	snap := model.Snapshot{Timestamp: now}
	for _, id := range s.nodes {
		base := s.baseState[id]
		m := model.NodeMetrics{
			NodeID:      id,
			Latency:     math.Max(1, base.Latency+s.gauss(5)),
			Bandwidth:   math.Max(10, base.Bandwidth+s.gauss(50)),
			PacketLoss:  math.Max(0, base.PacketLoss+s.gauss(0.5)),
			CPUUsage:    clamp(base.CPUUsage+s.gauss(5), 5, 100),
			MemoryUsage: clamp(base.MemoryUsage+s.gauss(3), 10, 100),
			Connections: max(0, base.Connections+s.rng.IntN(21)-10),
			Timestamp:   now,
		}

		if s.rng.Float64() < s.cfg.EventProbability {
			if ev, ok := s.rollEvent(); ok {
				m = applyEffects(m, ev.Effects)
				s.eventLog.Push(EventRecord{
					Timestamp: now,
					NodeID:    id,
					Event:     ev.Name,
					Effects:   ev.Effects,
				})
			}
		}
		for _, ev := range s.activeEvents[id] {
			m = applyEffects(m, ev.Effects)
		}

		snap.Nodes = append(snap.Nodes, clampMetrics(m))
	}
	return snap
}

func (s *Simulator) rollEvent() (Event, bool) {
	for _, ev := range backgroundEvents {
		if s.rng.Float64() < ev.Probability {
			return ev, true
		}
	}
	return Event{}, false
}

// TriggerScenario injects a named disturbance pattern into the network.
func (s *Simulator) TriggerScenario(name string) (ScenarioResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "high_traffic":
		return s.scenarioHighTraffic(), nil
	case "outage":
		return s.scenarioOutage(), nil
	case "gradual_degradation":
		return s.scenarioGradualDegradation(), nil
	case "recovery":
		return s.scenarioRecovery(), nil
	case "normal":
		return s.scenarioNormal(), nil
	default:
		return ScenarioResult{}, fmt.Errorf("unknown scenario: %s", name)
	}
}

func (s *Simulator) scenarioHighTraffic() ScenarioResult {
	k := min(5, len(s.nodes))
	affected := s.sampleNodes(k)
	ev := Event{
		Name:        "high_traffic_scenario",
		Probability: 1.0,
		Effects:     EventEffects{Latency: 80, Bandwidth: -400, CPUUsage: 30, Connections: 100},
	}
	for _, id := range affected {
		s.activeEvents[id] = append(s.activeEvents[id], ev)
	}
	return ScenarioResult{
		Scenario:      "high_traffic",
		AffectedNodes: affected,
		Message:       fmt.Sprintf("High traffic scenario triggered on %d nodes", len(affected)),
	}
}

func (s *Simulator) scenarioOutage() ScenarioResult {
	id := s.nodes[s.rng.IntN(len(s.nodes))]
	s.activeEvents[id] = []Event{{
		Name:        "outage_scenario",
		Probability: 1.0,
		Effects:     EventEffects{Latency: 400, PacketLoss: 40, Bandwidth: -800},
	}}
	return ScenarioResult{
		Scenario:      "outage",
		AffectedNodes: []string{id},
		Message:       fmt.Sprintf("Outage scenario triggered on %s", id),
	}
}

func (s *Simulator) scenarioGradualDegradation() ScenarioResult {
	for _, id := range s.nodes {
		base := s.baseState[id]
		base.Latency *= 1.2
		base.Bandwidth *= 0.9
		base.PacketLoss += 1
		base.CPUUsage += 5
		base.MemoryUsage += 3
		s.baseState[id] = base
	}
	return ScenarioResult{
		Scenario:      "gradual_degradation",
		AffectedNodes: append([]string(nil), s.nodes...),
		Message:       "Gradual degradation applied to all nodes",
	}
}

func (s *Simulator) scenarioRecovery() ScenarioResult {
	s.activeEvents = make(map[string][]Event)
	s.baseState = s.initBaseState()
	return ScenarioResult{
		Scenario:      "recovery",
		AffectedNodes: append([]string(nil), s.nodes...),
		Message:       "Network recovered to normal state",
	}
}

func (s *Simulator) scenarioNormal() ScenarioResult {
	s.activeEvents = make(map[string][]Event)
	return ScenarioResult{
		Scenario:      "normal",
		AffectedNodes: []string{},
		Message:       "Network operating normally",
	}
}

// ApplyActionEffect shifts a node's base state after a successful remediation
// and clears any scenario events pinned to it. Failed actions change nothing.
func (s *Simulator) ApplyActionEffect(nodeID string, action model.ActionType, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.baseState[nodeID]
	if !ok {
		return fmt.Errorf("unknown node: %s", nodeID)
	}
	if !success {
		return nil
	}

	eff, ok := actionEffects[action]
	if ok {
		base.Latency = math.Max(0, base.Latency+eff.Latency)
		base.Bandwidth = math.Max(0, base.Bandwidth+eff.Bandwidth)
		base.PacketLoss = math.Max(0, base.PacketLoss+eff.PacketLoss)
		base.CPUUsage = math.Max(0, base.CPUUsage+eff.CPUUsage)
		base.MemoryUsage = math.Max(0, base.MemoryUsage+eff.MemoryUsage)
		base.Connections = max(0, base.Connections+eff.Connections)
		s.baseState[nodeID] = base
	}

	delete(s.activeEvents, nodeID)
	return nil
}

// EventHistory returns recent background event firings, oldest first.
func (s *Simulator) EventHistory() []EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventLog.Items()
}

func (s *Simulator) sampleNodes(k int) []string {
	idx := s.rng.Perm(len(s.nodes))[:k]
	out := make([]string, 0, k)
	for _, i := range idx {
		out = append(out, s.nodes[i])
	}
	return out
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Simulator) gauss(stddev float64) float64 {
	return s.rng.NormFloat64() * stddev
}

func applyEffects(m model.NodeMetrics, eff EventEffects) model.NodeMetrics {
	m.Latency += eff.Latency
	m.Bandwidth += eff.Bandwidth
	m.PacketLoss += eff.PacketLoss
	m.CPUUsage += eff.CPUUsage
	m.MemoryUsage += eff.MemoryUsage
	m.Connections += eff.Connections
	return m
}

func clampMetrics(m model.NodeMetrics) model.NodeMetrics {
	m.Latency = clamp(m.Latency, 1, 500)
	m.Bandwidth = clamp(m.Bandwidth, 10, 2000)
	m.PacketLoss = clamp(m.PacketLoss, 0, 50)
	m.CPUUsage = clamp(m.CPUUsage, 5, 100)
	m.MemoryUsage = clamp(m.MemoryUsage, 10, 100)
	m.Connections = min(1000, max(0, m.Connections))
	return m
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
