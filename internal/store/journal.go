// Package store persists decisions and performance entries as JSON array
// journals under the data directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dm/netopt-go/internal/model"
)

const maxEntries = 1000

// DecisionEntry is one persisted decision with its observation context.
type DecisionEntry struct {
	Decision     model.Decision `json:"decision"`
	HealthScore  float64        `json:"health_score"`
	AnomalyCount int            `json:"anomaly_count"`
	Timestamp    string         `json:"timestamp"`
}

// PerformanceEntry is one persisted evaluation result.
type PerformanceEntry struct {
	ImprovementScore float64 `json:"improvement_score"`
	AvgEffectiveness float64 `json:"average_effectiveness"`
	Success          bool    `json:"success"`
	Timestamp        string  `json:"timestamp"`
}

// Journal owns the decisions.json and performance.json files. Each append
// rewrites the full array, capped to the most recent 1000 entries. Safe for
// concurrent use.
type Journal struct {
	mu              sync.Mutex
	decisionsFile   string
	performanceFile string
	now             func() time.Time
}

// Open prepares the data directory and initializes empty journals for any
// missing file.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	j := &Journal{
		decisionsFile:   filepath.Join(dataDir, "decisions.json"),
		performanceFile: filepath.Join(dataDir, "performance.json"),
		now:             time.Now,
	}
	for _, path := range []string{j.decisionsFile, j.performanceFile} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if werr := os.WriteFile(path, []byte("[]"), 0o644); werr != nil {
				return nil, fmt.Errorf("init journal %s: %w", path, werr)
			}
		}
	}
	return j, nil
}

// AppendDecision records one decision. The timestamp is assigned at write
// time.
func (j *Journal) AppendDecision(entry DecisionEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.Timestamp = j.now().Format(time.RFC3339)
	return appendEntry(j.decisionsFile, entry)
}

// AppendPerformance records one evaluation result. The timestamp is assigned
// at write time.
func (j *Journal) AppendPerformance(entry PerformanceEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.Timestamp = j.now().Format(time.RFC3339)
	return appendEntry(j.performanceFile, entry)
}

// Decisions returns the most recent persisted decisions, oldest first.
func (j *Journal) Decisions(limit int) ([]DecisionEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return readTail[DecisionEntry](j.decisionsFile, limit)
}

// Performance returns the most recent persisted evaluations, oldest first.
func (j *Journal) Performance(limit int) ([]PerformanceEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return readTail[PerformanceEntry](j.performanceFile, limit)
}

func appendEntry[T any](path string, entry T) error {
	entries, err := readAll[T](path)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

func readAll[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal: %w", err)
	}
	var entries []T
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse journal %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

func readTail[T any](path string, limit int) ([]T, error) {
	entries, err := readAll[T](path)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
