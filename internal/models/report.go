package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pipeline stage names, in execution order.
const (
	StageMatches   = "matches"
	StageMatchdays = "matchdays"
	StageStandings = "standings"
	StageDerived   = "derived"
)

var Stages = []string{StageMatches, StageMatchdays, StageStandings, StageDerived}

type StageCounts struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}

type UnitError struct {
	Stage string `json:"stage"`
	Unit  string `json:"unit"`
	Error string `json:"error"`
}

// RunReport summarises one pipeline run.
type RunReport struct {
	RunID      uuid.UUID               `json:"runId"`
	StartedAt  time.Time               `json:"startedAt"`
	FinishedAt time.Time               `json:"finishedAt"`
	Stages     map[string]*StageCounts `json:"stages"`
	Errors     []UnitError             `json:"errors"`
	Warnings   int                     `json:"warnings"`
}

func NewRunReport(startedAt time.Time) *RunReport {
	r := &RunReport{
		RunID:     uuid.New(),
		StartedAt: startedAt,
		Stages:    make(map[string]*StageCounts, len(Stages)),
	}
	for _, s := range Stages {
		r.Stages[s] = &StageCounts{}
	}
	return r
}

func (r *RunReport) Processed(stage string) { r.stage(stage).Processed++ }

func (r *RunReport) Skipped(stage string) { r.stage(stage).Skipped++ }

func (r *RunReport) Errored(stage, unit string, err error) {
	r.stage(stage).Errored++
	r.Errors = append(r.Errors, UnitError{Stage: stage, Unit: unit, Error: err.Error()})
}

func (r *RunReport) stage(name string) *StageCounts {
	c, ok := r.Stages[name]
	if !ok {
		c = &StageCounts{}
		r.Stages[name] = c
	}
	return c
}

// Failed reports whether at least one unit hit a fatal error.
func (r *RunReport) Failed() bool {
	return len(r.Errors) > 0
}

func (r *RunReport) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📦 *Run %s*\n", r.RunID.String()[:8]))
	for _, name := range Stages {
		c := r.stage(name)
		sb.WriteString(fmt.Sprintf("%s: %d processed, %d skipped, %d errored\n", name, c.Processed, c.Skipped, c.Errored))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf("Warnings: %d\n", r.Warnings))
	}
	if !r.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)))
	}
	return sb.String()
}
