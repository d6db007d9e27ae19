package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/apiforge/internal/categories"
	"git.home.luguber.info/inful/apiforge/internal/entity"
	"git.home.luguber.info/inful/apiforge/internal/records"
	"git.home.luguber.info/inful/apiforge/internal/render/greptree"
	"git.home.luguber.info/inful/apiforge/internal/render/xmldoc"
	"git.home.luguber.info/inful/apiforge/internal/report"
	"git.home.luguber.info/inful/apiforge/internal/sets"
	"git.home.luguber.info/inful/apiforge/internal/validate"
	"git.home.luguber.info/inful/apiforge/internal/xref"
)

// Stage names are stable: they appear in report issues and timing logs.
const (
	StageLoad           = "load"
	StageCategories     = "categories"
	StageMerge          = "merge"
	StageRenderXMLDoc   = "render_xmldoc"
	StageRenderGrepTree = "render_greptree"
	StageValidate       = "validate"
	StageFinalize       = "finalize"
)

// Stages returns the full generation run in execution order.
func Stages() []StageDef {
	return []StageDef{
		{StageLoad, stageLoad},
		{StageCategories, stageCategories},
		{StageMerge, stageMerge},
		{StageRenderXMLDoc, stageRenderXMLDoc},
		{StageRenderGrepTree, stageRenderGrepTree},
		{StageValidate, stageValidate},
		{StageFinalize, stageFinalize},
	}
}

// Run executes a full generation run. The returned report is always usable,
// even when err is non-nil; a fatal stage error is recorded in it before the
// report is saved.
func Run(ctx context.Context, st *State) (*report.Report, error) {
	err := runStages(ctx, st, Stages())
	if err != nil {
		st.Report.AddError(report.CodeArtifactMismatch, stageName(err), err.Error(), nil)
		st.Report.Finish()
		// Best effort: a partially failed run still leaves a report behind.
		_ = st.Report.Save(st.reportPath())
	}
	return st.Report, err
}

func stageName(err error) string {
	if se, ok := err.(*StageError); ok {
		return se.Stage
	}
	return "run"
}

func (st *State) outDir() string { return st.Config.Output.Directory }
func (st *State) xmldocDir() string {
	return filepath.Join(st.outDir(), st.Config.Output.XMLDocDir)
}
func (st *State) greptreeDir() string {
	return filepath.Join(st.outDir(), st.Config.Output.GrepTreeDir)
}
func (st *State) reportPath() string {
	return filepath.Join(st.outDir(), st.Config.Output.ReportFile)
}

// stageLoad reads the five phase record files. A malformed or missing file
// aborts only that file: the merge proceeds with whatever loaded.
func stageLoad(_ context.Context, st *State) error {
	loadListings := func() {
		listings, stats, err := records.LoadTypeListings(st.Config.Inputs.TypeListings)
		st.recordLoad("type_listings", st.Config.Inputs.TypeListings, stats, err)
		st.Inputs.TypeListings = listings
	}
	loadDetails := func() {
		details, stats, err := records.LoadTypeDetails(st.Config.Inputs.TypeDetails)
		st.recordLoad("type_details", st.Config.Inputs.TypeDetails, stats, err)
		st.Inputs.TypeDetails = details
	}
	loadMembers := func() {
		members, stats, err := records.LoadMemberDetails(st.Config.Inputs.MemberDetails)
		st.recordLoad("member_details", st.Config.Inputs.MemberDetails, stats, err)
		st.Inputs.MemberDetails = members
	}
	loadEnums := func() {
		enums, stats, err := records.LoadEnumListings(st.Config.Inputs.EnumMembers)
		st.recordLoad("enum_members", st.Config.Inputs.EnumMembers, stats, err)
		st.Inputs.EnumListings = enums
	}
	loadExamples := func() {
		examples, stats, err := records.LoadExamples(st.Config.Inputs.Examples)
		st.recordLoad("examples", st.Config.Inputs.Examples, stats, err)
		st.Inputs.Examples = examples
	}

	loadListings()
	loadDetails()
	loadMembers()
	loadEnums()
	loadExamples()
	return nil
}

func (st *State) recordLoad(phase, path string, stats records.LoadStats, err error) {
	if err != nil {
		st.Report.AddError(report.CodeMalformedInput, StageLoad, err.Error(),
			map[string]any{"phase": phase, "path": path})
		return
	}
	if stats.Dropped > 0 {
		st.Report.AddWarning(report.CodeRecordDropped, StageLoad,
			"records missing mandatory fields were dropped",
			map[string]any{"phase": phase, "dropped": stats.Dropped})
		st.Report.Stats.RecordsDropped += stats.Dropped
	}
	st.Logger.Info("records loaded",
		slog.String("phase", phase),
		slog.Int("loaded", stats.Loaded),
		slog.Int("dropped", stats.Dropped))
}

// stageCategories loads the functional-category side-table when configured.
// A missing or unparsable table degrades to uncategorized output.
func stageCategories(_ context.Context, st *State) error {
	if st.Config.Categories.HTMLFile == "" {
		return nil
	}
	mapping, err := categories.ParseHTML(st.Config.Categories.HTMLFile)
	if err != nil {
		st.Report.AddWarning(report.CodeMalformedInput, StageCategories,
			"functional categories table unavailable",
			map[string]any{"path": st.Config.Categories.HTMLFile, "error": err.Error()})
		return nil
	}
	if st.Config.Categories.OverridesFile != "" {
		if err := mapping.ApplyOverridesFile(st.Config.Categories.OverridesFile); err != nil {
			st.Report.AddWarning(report.CodeMalformedInput, StageCategories,
				"category overrides unavailable",
				map[string]any{"path": st.Config.Categories.OverridesFile, "error": err.Error()})
		}
	}
	st.Categories = mapping
	st.Logger.Info("functional categories loaded", slog.Int("types", mapping.Len()))
	return nil
}

// stageMerge builds the entity model and folds merge anomalies into the
// report.
func stageMerge(_ context.Context, st *State) error {
	model, mergeReport := entity.Merge(st.Inputs)
	st.Model = model
	st.MergeReport = mergeReport

	for _, t := range model.Types {
		if st.Categories.Has(t.FullName()) {
			t.Category = st.Categories.Lookup(t.FullName())
		}
	}

	stats := &st.Report.Stats
	for _, t := range model.Types {
		for _, rm := range entity.DedupedMembers(t) {
			stats.MembersMerged++
			if rm.Member.Kind == entity.KindProperty {
				stats.Properties++
			} else {
				stats.Methods++
			}
			for _, p := range rm.Member.Parameters {
				if p.Description != "" {
					stats.DocumentedParams++
				}
			}
		}
		stats.EnumMembersMerged += len(t.EnumMembers)
	}
	stats.Assemblies = len(model.ByAssembly())
	stats.TypesMerged = len(model.Types)
	stats.Collisions = mergeReport.CollisionCount()

	addCount := func(code report.Code, n int, msg string) {
		if n > 0 {
			st.Report.AddWarning(code, StageMerge, msg, map[string]any{"count": n})
		}
	}
	addCount(report.CodeOrphanTypeDetail, mergeReport.OrphanTypeDetails,
		"type detail records without a matching listing")
	addCount(report.CodeOrphanMember, mergeReport.OrphanMembers,
		"member detail records whose owning type is unknown")
	addCount(report.CodeEnumKindConflict, mergeReport.EnumKindConflicts,
		"enum members attached to types not marked as enums")
	for _, id := range sets.SortedStrings(collidedIDs(mergeReport)) {
		st.Report.AddWarning(report.CodeIdentifierCollision, StageMerge,
			"distinct members share one identifier",
			map[string]any{"identifier": id, "members": mergeReport.Collisions[id]})
	}

	st.Logger.Info("entities merged",
		slog.Int("types", stats.TypesMerged),
		slog.Int("members", stats.MembersMerged),
		slog.Int("collisions", stats.Collisions))
	return nil
}

func collidedIDs(mr *entity.MergeReport) sets.Set[string] {
	ids := sets.New[string]()
	for id := range mr.Collisions {
		ids.Add(id)
	}
	return ids
}

func (st *State) newRewriter() *xref.Rewriter {
	return &xref.Rewriter{
		BaseURL:  st.Config.Links.BaseURL,
		Resolver: modelResolver{st.Model},
	}
}

type modelResolver struct{ m *entity.Model }

func (r modelResolver) HasType(name string) bool {
	_, ok := r.m.Lookup(name)
	return ok
}

func (r modelResolver) HasMember(typeName, member string) bool {
	return r.m.HasMember(typeName, member)
}

func stageRenderXMLDoc(_ context.Context, st *State) error {
	rw := st.newRewriter()
	renderer := &xmldoc.Renderer{OutDir: st.xmldocDir(), Rewriter: rw, Logger: st.Logger}
	res, err := renderer.Render(st.Model)
	if res != nil {
		st.Report.Stats.XMLDocFiles = len(res.Files)
		st.Report.Stats.ExamplesMatched = res.Examples
		st.recordArtifacts(res.Files)
		st.recordLinkCounters(StageRenderXMLDoc, rw.Counters)
	}
	// The renderer skips only the failed assembly; whatever rendered is kept.
	st.recordRenderFailure(StageRenderXMLDoc, err)
	return nil
}

func stageRenderGrepTree(_ context.Context, st *State) error {
	rw := st.newRewriter()
	renderer := &greptree.Renderer{OutDir: st.greptreeDir(), Rewriter: rw, Logger: st.Logger}
	res, err := renderer.Render(st.Model)
	if res != nil {
		st.Report.Stats.MarkdownFiles = len(res.Files)
		st.recordArtifacts(res.Files)
		st.recordLinkCounters(StageRenderGrepTree, rw.Counters)
	}
	st.recordRenderFailure(StageRenderGrepTree, err)
	return nil
}

func (st *State) recordRenderFailure(stage string, err error) {
	if err != nil {
		st.Report.AddError(report.CodeArtifactMismatch, stage, err.Error(), nil)
	}
}

func (st *State) recordArtifacts(files []string) {
	for _, f := range files {
		if rel, err := filepath.Rel(st.outDir(), f); err == nil {
			st.Report.Artifacts = append(st.Report.Artifacts, filepath.ToSlash(rel))
		}
	}
}

func (st *State) recordLinkCounters(stage string, c xref.Counters) {
	st.Report.Stats.LinksRewritten += c.Rewritten
	st.Report.Stats.LinksExternal += c.External
	st.Report.Stats.LinksBroken += c.Broken
	if c.Broken > 0 {
		st.Report.AddWarning(report.CodeBrokenLink, stage,
			"links stripped to plain text", map[string]any{"count": c.Broken})
	}
}

// stageValidate re-reads the rendered output.
func stageValidate(_ context.Context, st *State) error {
	validate.XMLDoc(st.xmldocDir(), st.Report, st.Logger)
	validate.GrepTree(st.greptreeDir(), st.Report, st.Logger)
	return nil
}

// stageFinalize stamps the outcome and writes the report file.
func stageFinalize(_ context.Context, st *State) error {
	if err := os.MkdirAll(st.outDir(), 0o755); err != nil {
		return newFatalStageError(StageFinalize, err)
	}
	st.Report.Artifacts = append(st.Report.Artifacts, st.Config.Output.ReportFile)
	st.Report.Finish()
	if err := st.Report.Save(st.reportPath()); err != nil {
		return newFatalStageError(StageFinalize, err)
	}
	st.Report.LogSummary(st.Logger)
	return nil
}
