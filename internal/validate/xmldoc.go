// Package validate re-reads the rendered output of a generation run and
// accumulates anomalies into a report: malformed XML, invalid identifiers,
// broken index links, and artifact drift against the recorded file list.
package validate

import (
	"encoding/xml"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/identifier"
	"git.home.luguber.info/inful/apiforge/internal/logfields"
	"git.home.luguber.info/inful/apiforge/internal/report"
)

const stageValidate = "validate"

// xmlDoc mirrors the XMLDoc skeleton for structural validation.
type xmlDoc struct {
	XMLName  xml.Name `xml:"doc"`
	Assembly struct {
		Name string `xml:"name"`
	} `xml:"assembly"`
	Members struct {
		Members []xmlMember `xml:"member"`
	} `xml:"members"`
}

type xmlMember struct {
	Name    string `xml:"name,attr"`
	Summary string `xml:"summary"`
}

// XMLDocStats summarizes one validated XMLDoc directory.
type XMLDocStats struct {
	Files   int
	Members int
}

// XMLDoc re-parses every .xml file in dir. Structural failures are
// error-severity; identifier and content anomalies are warnings.
func XMLDoc(dir string, rep *report.Report, logger *slog.Logger) XMLDocStats {
	var stats XMLDocStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"xmldoc output directory unreadable", map[string]any{"path": dir})
		return stats
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		stats.Files++
		stats.Members += validateXMLFile(path, entry.Name(), rep, logger)
	}
	if stats.Files == 0 {
		rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
			"no xmldoc files found", map[string]any{"path": dir})
	}
	return stats
}

func validateXMLFile(path, name string, rep *report.Report, logger *slog.Logger) int {
	data, err := os.ReadFile(path)
	if err != nil {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"xmldoc file unreadable", map[string]any{"file": name})
		return 0
	}

	var doc xmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		rep.AddError(report.CodeMalformedInput, stageValidate,
			"xmldoc file is not well-formed XML", map[string]any{"file": name, "error": err.Error()})
		return 0
	}

	if strings.TrimSpace(doc.Assembly.Name) == "" {
		rep.AddError(report.CodeArtifactMismatch, stageValidate,
			"xmldoc file missing assembly name", map[string]any{"file": name})
	} else if doc.Assembly.Name+".xml" != name {
		rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
			"xmldoc filename does not match assembly name",
			map[string]any{"file": name, "assembly": doc.Assembly.Name})
	}

	if len(doc.Members.Members) == 0 {
		rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
			"xmldoc file contains no members", map[string]any{"file": name})
	}

	for _, m := range doc.Members.Members {
		if !identifier.Valid(m.Name) {
			rep.AddWarning(report.CodeArtifactMismatch, stageValidate,
				"invalid member identifier", map[string]any{"file": name, "identifier": m.Name})
		}
	}

	logger.Debug("xmldoc file validated",
		logfields.Path(path),
		logfields.Count(len(doc.Members.Members)))
	return len(doc.Members.Members)
}
