package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatencySeverity(t *testing.T) {
	assert.Equal(t, severityNormal, latencySeverity(80))
	assert.Equal(t, severityWarning, latencySeverity(150))
	assert.Equal(t, severityCritical, latencySeverity(250))
}

func TestLossSeverity(t *testing.T) {
	assert.Equal(t, severityNormal, lossSeverity(2))
	assert.Equal(t, severityCritical, lossSeverity(8))
}

func TestBandwidthSeverity(t *testing.T) {
	assert.Equal(t, severityNormal, bandwidthSeverity(500))
	assert.Equal(t, severityWarning, bandwidthSeverity(50))
}

func TestCPUSeverity(t *testing.T) {
	assert.Equal(t, severityNormal, cpuSeverity(70))
	assert.Equal(t, severityWarning, cpuSeverity(85))
	assert.Equal(t, severityCritical, cpuSeverity(96))
}

func TestMemorySeverity(t *testing.T) {
	assert.Equal(t, severityNormal, memorySeverity(80))
	assert.Equal(t, severityWarning, memorySeverity(90))
	assert.Equal(t, severityCritical, memorySeverity(95))
}

func TestSeverityToStyle(t *testing.T) {
	assert.Equal(t, StyleYellow, severityToStyle(severityWarning))
	assert.Equal(t, StyleRed, severityToStyle(severityCritical))
}
