package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyPhase      = "phase"
	KeyAssembly   = "assembly"
	KeyNamespace  = "namespace"
	KeyTypeName   = "type"
	KeyMember     = "member"
	KeyIdentifier = "identifier"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Phase(name string) slog.Attr      { return slog.String(KeyPhase, name) }
func Assembly(a string) slog.Attr      { return slog.String(KeyAssembly, a) }
func Namespace(ns string) slog.Attr    { return slog.String(KeyNamespace, ns) }
func TypeName(t string) slog.Attr      { return slog.String(KeyTypeName, t) }
func Member(m string) slog.Attr        { return slog.String(KeyMember, m) }
func Identifier(id string) slog.Attr   { return slog.String(KeyIdentifier, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
