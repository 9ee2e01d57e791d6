package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnomaly_WireFormat(t *testing.T) {
	a := Anomaly{
		Type:        AnomalyHighLatency,
		NodeID:      "node_2",
		Value:       180.4,
		Threshold:   100,
		Severity:    SeverityWarning,
		Description: "Latency elevated on node_2",
	}

	body, err := json.Marshal(a)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "node_2", raw["node"], "the node field keeps its short wire name")
	assert.Equal(t, "high_latency", raw["type"])
	assert.Equal(t, "warning", raw["severity"])
}
