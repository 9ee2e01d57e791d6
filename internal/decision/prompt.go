package decision

import (
	"fmt"
	"strings"

	"github.com/dm/netopt-go/internal/model"
)

const systemPrompt = `You are an expert network operations AI assistant specializing in autonomous network monitoring and optimization. Your role is to analyze network metrics, identify issues, and recommend corrective actions.

## Your Capabilities
- Analyze network metrics (latency, bandwidth, packet loss, CPU, memory)
- Identify patterns and anomalies
- Recommend optimal corrective actions
- Learn from historical feedback to improve decisions

## Available Actions
1. **optimize_routing** - Optimize network routing paths to reduce latency
2. **reduce_traffic** - Throttle traffic to reduce congestion (params: throttle_percent)
3. **load_balance** - Redistribute load across nodes
4. **clear_cache** - Clear caches to free memory
5. **request_bandwidth** - Request additional bandwidth (params: increase_percent)
6. **restart_service** - Restart a problematic service
7. **alert** - Send alert to operations team
8. **scale_up** - Add more instances
9. **scale_down** - Remove excess instances

## Decision Guidelines
1. Prioritize stability over optimization
2. Prefer less invasive actions first
3. Consider cascading effects
4. Account for historical action effectiveness
5. Never take more than 3 actions per decision

## Response Format
Always respond with valid JSON in this structure:
` + "```json" + `
{
    "action_required": true/false,
    "reasoning": "Detailed explanation of your analysis",
    "recommended_actions": [
        {
            "action": "action_name",
            "target": "node_id",
            "priority": "critical/high/medium/low",
            "params": {}
        }
    ],
    "confidence": 0.0-1.0
}
` + "```"

// buildPrompt renders the current network state, detected anomalies, and
// recent feedback into the user prompt.
func buildPrompt(snap model.Snapshot, anomalies []model.Anomaly, healthScore float64, feedback []model.FeedbackEntry) string {
	var b strings.Builder

	b.WriteString("## Current Network State\n")
	fmt.Fprintf(&b, "**Overall Health Score:** %.1f/100\n\n", healthScore)
	b.WriteString("### Metrics Summary\n")

	if len(snap.Nodes) > 0 {
		sum := snap.Summarize()
		fmt.Fprintf(&b, "**Node Count:** %d\n", len(snap.Nodes))
		fmt.Fprintf(&b, "**Avg Latency:** %.1fms (max: %.1fms)\n", sum.AvgLatency, sum.MaxLatency)
		fmt.Fprintf(&b, "**Avg Bandwidth:** %.0fMbps (min: %.0fMbps)\n", sum.AvgBandwidth, sum.MinBandwidth)
		fmt.Fprintf(&b, "**Avg Packet Loss:** %.2f%%\n", sum.AvgPacketLoss)
		fmt.Fprintf(&b, "**Avg CPU:** %.1f%%\n", sum.AvgCPU)
		fmt.Fprintf(&b, "**Avg Memory:** %.1f%%\n", sum.AvgMemory)
	}

	if len(anomalies) > 0 {
		b.WriteString("\n### Detected Anomalies\n")
		fmt.Fprintf(&b, "**Total:** %d issues detected\n\n", len(anomalies))
		shown := anomalies
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for i, a := range shown {
			marker := "warning"
			if a.Severity == model.SeverityCritical {
				marker = "critical"
			}
			fmt.Fprintf(&b, "%d. [%s] **%s** on `%s`: %s\n", i+1, marker, a.Type, a.NodeID, a.Description)
		}
	} else {
		b.WriteString("\n### No Anomalies Detected\nAll metrics are within normal ranges.\n")
	}

	if len(feedback) > 0 {
		b.WriteString("\n### Historical Feedback\nRecent action effectiveness:\n")
		recent := feedback
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		for _, f := range recent {
			label := "Ineffective"
			if f.Success {
				label = "Effective"
			}
			fmt.Fprintf(&b, "- %s: %s\n", label, f.Details)
		}
	}

	b.WriteString("\n---\n\n## Decision Required\n")
	b.WriteString("Based on the current network state and historical feedback, analyze the situation and provide your recommendation.\n")
	b.WriteString("If action is required, specify the actions with targets and priorities.\n")
	b.WriteString("If no action is needed, explain why and confirm network stability.")

	return b.String()
}
