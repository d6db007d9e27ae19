// Package report accumulates anomaly records across a generation run and
// serializes them into a machine-readable report consumed by the validate
// step. Issue codes are a stable contract; the surrounding JSON shape is
// internal and may evolve.
package report

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/apiforge/internal/errors"
	"git.home.luguber.info/inful/apiforge/internal/logfields"
)

// Code identifies one class of anomaly. Codes are stable across releases so
// downstream tooling can filter on them.
type Code string

const (
	CodeRecordDropped       Code = "RECORD_DROPPED"
	CodeOrphanTypeDetail    Code = "ORPHAN_TYPE_DETAIL"
	CodeOrphanMember        Code = "ORPHAN_MEMBER"
	CodeEnumKindConflict    Code = "ENUM_KIND_CONFLICT"
	CodeIdentifierCollision Code = "IDENTIFIER_COLLISION"
	CodeBrokenLink          Code = "BROKEN_LINK"
	CodeMalformedInput      Code = "MALFORMED_INPUT"
	CodeArtifactMismatch    Code = "ARTIFACT_MISMATCH"
)

// Severity mirrors the error taxonomy: errors flip the exit code, warnings
// only appear in the summary.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one recorded anomaly.
type Issue struct {
	Code     Code           `json:"code"`
	Stage    string         `json:"stage"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
}

// Stats carries the headline counters of a run.
type Stats struct {
	Assemblies        int `json:"assemblies"`
	TypesMerged       int `json:"types_merged"`
	MembersMerged     int `json:"members_merged"`
	Properties        int `json:"properties"`
	Methods           int `json:"methods"`
	EnumMembersMerged int `json:"enum_members_merged"`
	DocumentedParams  int `json:"documented_params"`
	ExamplesMatched   int `json:"examples_matched"`
	RecordsDropped    int `json:"records_dropped"`
	XMLDocFiles       int `json:"xmldoc_files"`
	MarkdownFiles     int `json:"markdown_files"`
	LinksRewritten    int `json:"links_rewritten"`
	LinksExternal     int `json:"links_external"`
	LinksBroken       int `json:"links_broken"`
	Collisions        int `json:"collisions"`
}

// Report is the accumulated outcome of one generation run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    string    `json:"outcome"`
	Stats      Stats     `json:"stats"`
	Issues     []Issue   `json:"issues"`

	// Artifacts lists every output file the run wrote, relative to the
	// output directory. The validate step diffs this against the tree on
	// disk to detect partial or stale output.
	Artifacts []string `json:"artifacts,omitempty"`
}

// New starts an empty report with a fresh run ID.
func New() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Add appends one issue.
func (r *Report) Add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// AddWarning appends a warning-severity issue.
func (r *Report) AddWarning(code Code, stage, message string, ctx map[string]any) {
	r.Add(Issue{Code: code, Stage: stage, Severity: SeverityWarning, Message: message, Context: ctx})
}

// AddError appends an error-severity issue.
func (r *Report) AddError(code Code, stage, message string, ctx map[string]any) {
	r.Add(Issue{Code: code, Stage: stage, Severity: SeverityError, Message: message, Context: ctx})
}

// Count returns the number of issues carrying a code.
func (r *Report) Count(code Code) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Code == code {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity issue was recorded.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Finish stamps the end time and derives the outcome string.
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
	switch {
	case r.HasErrors():
		r.Outcome = "failed"
	case len(r.Issues) > 0:
		r.Outcome = "completed_with_warnings"
	default:
		r.Outcome = "completed"
	}
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.InternalError("report serialization failed", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}

// Load reads a previously saved report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InputNotFound(path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.MalformedInput(path, err)
	}
	return &r, nil
}

// LogSummary emits per-code counts and headline stats at the end of a run.
func (r *Report) LogSummary(logger *slog.Logger) {
	counts := make(map[Code]int)
	for _, issue := range r.Issues {
		counts[issue.Code]++
	}
	codes := make([]Code, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	logger.Info("run summary",
		logfields.RunID(r.RunID),
		slog.String("outcome", r.Outcome),
		slog.Int("types", r.Stats.TypesMerged),
		slog.Int("members", r.Stats.MembersMerged),
		slog.Int("issues", len(r.Issues)),
	)
	for _, code := range codes {
		logger.Info("issue count",
			logfields.RunID(r.RunID),
			slog.String("code", string(code)),
			logfields.Count(counts[code]),
		)
	}
}
