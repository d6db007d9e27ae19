package validate

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/frontmatter"
	"git.home.luguber.info/inful/apiforge/internal/logfields"
	"git.home.luguber.info/inful/apiforge/internal/markdown"
	"git.home.luguber.info/inful/apiforge/internal/report"
	"git.home.luguber.info/inful/apiforge/internal/sets"
)

var indexFiles = []string{"by_category.md", "by_assembly.md", "statistics.md"}

// GrepTreeStats summarizes one validated grep-tree directory.
type GrepTreeStats struct {
	TypeDirs    int
	MemberFiles int
	IndexLinks  int
}

// GrepTree validates the markdown tree under dir: every type directory has an
// overview, every markdown file opens with parsable frontmatter, and every
// relative link in the index files points at an existing file.
func GrepTree(dir string, rep *report.Report, logger *slog.Logger) GrepTreeStats {
	var stats GrepTreeStats

	for _, bucket := range []string{"types", "enums"} {
		bucketDir := filepath.Join(dir, "api", bucket)
		entries, err := os.ReadDir(bucketDir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			rep.AddError(report.CodeArtifactMismatch, stageValidate,
				"grep-tree bucket unreadable", map[string]any{"path": bucketDir})
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			stats.TypeDirs++
			stats.MemberFiles += validateTypeDir(filepath.Join(bucketDir, entry.Name()), rep)
		}
	}

	indexDir := filepath.Join(dir, "api", "index")
	for _, name := range indexFiles {
		path := filepath.Join(indexDir, name)
		if _, err := os.Stat(path); err != nil {
			rep.AddError(report.CodeArtifactMismatch, stageValidate,
				"index file missing", map[string]any{"file": name})
			continue
		}
		stats.IndexLinks += validateIndexLinks(path, indexDir, rep)
	}

	logger.Debug("grep tree validated",
		logfields.Path(dir),
		logfields.Count(stats.TypeDirs))
	return stats
}

func validateTypeDir(dir string, rep *report.Report) int {
	rel := filepath.Base(dir)
	members := 0

	entries, err := os.ReadDir(dir)
	if err != nil {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"type directory unreadable", map[string]any{"path": dir})
		return 0
	}

	hasOverview := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		if entry.Name() == "_overview.md" {
			hasOverview = true
		} else {
			members++
		}
		validateFrontmatter(filepath.Join(dir, entry.Name()), rep)
	}
	if !hasOverview {
		rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
			"type directory missing overview", map[string]any{"type": rel})
	}
	return members
}

func validateFrontmatter(path string, rep *report.Report) {
	data, err := os.ReadFile(path)
	if err != nil {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"markdown file unreadable", map[string]any{"path": path})
		return
	}
	meta, _, had, err := frontmatter.Split(data)
	if err != nil || !had {
		rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
			"markdown file missing frontmatter", map[string]any{"file": filepath.Base(path)})
		return
	}
	if _, err := frontmatter.ParseYAML(meta); err != nil {
		rep.AddWarning(report.CodeMalformedInput, stageValidate,
			"markdown frontmatter is not valid YAML", map[string]any{"file": filepath.Base(path)})
	}
}

// validateIndexLinks extracts every relative link from an index file and
// checks the target exists on disk.
func validateIndexLinks(path, baseDir string, rep *report.Report) int {
	data, err := os.ReadFile(path)
	if err != nil {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"index file unreadable", map[string]any{"path": path})
		return 0
	}
	_, body, _, err := frontmatter.Split(data)
	if err != nil {
		body = data
	}

	checked := 0
	for _, link := range markdown.ExtractLinks(body) {
		dest := link.Destination
		if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "#") {
			continue
		}
		checked++
		target := filepath.Join(baseDir, filepath.FromSlash(dest))
		if _, err := os.Stat(target); err != nil {
			rep.AddWarning(report.CodeBrokenLink, stageValidate,
				"index links to missing file",
				map[string]any{"index": filepath.Base(path), "target": dest})
		}
	}
	return checked
}

// Artifacts diffs the file list recorded in a run report against the tree on
// disk under outDir. Missing files are error-severity; unexpected extras are
// warnings (stale output from a previous run).
func Artifacts(recorded []string, outDir string, rep *report.Report) {
	expected := sets.New(recorded...)
	actual := sets.New[string]()

	_ = filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(outDir, path)
		if relErr != nil {
			return nil
		}
		actual.Add(filepath.ToSlash(rel))
		return nil
	})

	for _, missing := range sets.SortedStrings(expected.Diff(actual)) {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"recorded artifact missing from output", map[string]any{"file": missing})
	}
	for _, extra := range sets.SortedStrings(actual.Diff(expected)) {
		rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
			"unexpected file in output directory", map[string]any{"file": extra})
	}
}
