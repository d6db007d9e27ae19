package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiforge/internal/config"
	"git.home.luguber.info/inful/apiforge/internal/report"
)

const typeListingsXML = `<Types>
  <Type>
    <Name>ISketchManager</Name>
    <Assembly>SolidWorks.Interop.sldworks</Assembly>
    <Namespace>SldWorks</Namespace>
    <PublicProperties>
      <Property><Name>Active</Name><Url>sldworks~SldWorks.ISketchManager~Active.html</Url></Property>
    </PublicProperties>
    <PublicMethods>
      <Method><Name>InsertSketch</Name><Url>sldworks~SldWorks.ISketchManager~InsertSketch.html</Url></Method>
    </PublicMethods>
  </Type>
</Types>`

const typeDetailsXML = `<Types>
  <Type>
    <Name>ISketchManager</Name>
    <Assembly>SolidWorks.Interop.sldworks</Assembly>
    <Namespace>SldWorks</Namespace>
    <Description>Provides access to sketch creation.</Description>
    <Examples>
      <Example>
        <Name>Insert Sketch Example</Name>
        <Language>C#</Language>
        <Url>examples/insert_sketch_cs.html</Url>
      </Example>
    </Examples>
  </Type>
</Types>`

const memberDetailsXML = `<Members>
  <Member>
    <Assembly>SolidWorks.Interop.sldworks</Assembly>
    <Type>SldWorks.ISketchManager</Type>
    <Name>InsertSketch</Name>
    <Signature>void InsertSketch(System.Boolean UpdateEditRebuild)</Signature>
    <Description>Inserts a new sketch.</Description>
    <Parameters>
      <Parameter><Name>UpdateEditRebuild</Name><Description>Whether to rebuild.</Description></Parameter>
    </Parameters>
  </Member>
</Members>`

const enumMembersXML = `<Enums>
  <Enum>
    <Name>swSketchSegments_e</Name>
    <Assembly>SolidWorks.Interop.swconst</Assembly>
    <Namespace>SwConst</Namespace>
    <Members>
      <Member><Name>swSketchLINE</Name><Description>Line segment.</Description></Member>
      <Member><Name>swSketchARC</Name><Description>Arc segment.</Description></Member>
    </Members>
  </Enum>
</Enums>`

const examplesXML = `<Examples>
  <Example>
    <Url>examples/insert_sketch_cs.html</Url>
    <Content>Open a part first.&lt;code&gt;swApp.ActiveDoc.SketchManager.InsertSketch(true);&lt;/code&gt;</Content>
  </Example>
</Examples>`

func writeFixtureInputs(t *testing.T, dir string) config.InputsConfig {
	t.Helper()
	files := map[string]string{
		"api_members.xml":        typeListingsXML,
		"api_types.xml":          typeDetailsXML,
		"api_member_details.xml": memberDetailsXML,
		"enum_members.xml":       enumMembersXML,
		"examples.xml":           examplesXML,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return config.InputsConfig{
		TypeListings:  filepath.Join(dir, "api_members.xml"),
		TypeDetails:   filepath.Join(dir, "api_types.xml"),
		MemberDetails: filepath.Join(dir, "api_member_details.xml"),
		EnumMembers:   filepath.Join(dir, "enum_members.xml"),
		Examples:      filepath.Join(dir, "examples.xml"),
	}
}

func fixtureConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Inputs = writeFixtureInputs(t, t.TempDir())
	cfg.Output.Directory = t.TempDir()
	cfg.RunStore.Enabled = false
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_FullFixture_ProducesBothProjectionsAndReport(t *testing.T) {
	cfg := fixtureConfig(t)
	st := NewState(cfg, testLogger())

	rep, err := Run(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, "completed", rep.Outcome)

	require.Equal(t, 2, rep.Stats.Assemblies)
	require.Equal(t, 2, rep.Stats.TypesMerged)
	require.Equal(t, 2, rep.Stats.MembersMerged)
	require.Equal(t, 1, rep.Stats.Properties)
	require.Equal(t, 1, rep.Stats.Methods)
	require.Equal(t, 1, rep.Stats.DocumentedParams)
	require.Equal(t, 2, rep.Stats.EnumMembersMerged)
	require.Equal(t, 2, rep.Stats.XMLDocFiles)
	require.Equal(t, 1, rep.Stats.ExamplesMatched)

	xmldocPath := filepath.Join(cfg.Output.Directory, "xmldoc", "SolidWorks.Interop.sldworks.xml")
	data, readErr := os.ReadFile(xmldocPath)
	require.NoError(t, readErr)
	require.Contains(t, string(data), `name="T:SldWorks.ISketchManager"`)
	require.Contains(t, string(data), `name="M:SldWorks.ISketchManager.InsertSketch(System.Boolean)"`)
	require.Contains(t, string(data), "<![CDATA[")

	overview := filepath.Join(cfg.Output.Directory, "docs", "api", "types", "ISketchManager", "_overview.md")
	require.FileExists(t, overview)
	require.FileExists(t, filepath.Join(cfg.Output.Directory, "docs", "api", "enums", "swSketchSegments_e", "_overview.md"))
	require.FileExists(t, filepath.Join(cfg.Output.Directory, "docs", "api", "index", "statistics.md"))

	saved, loadErr := report.Load(filepath.Join(cfg.Output.Directory, "report.json"))
	require.NoError(t, loadErr)
	require.Equal(t, rep.RunID, saved.RunID)
	require.Contains(t, saved.Artifacts, "report.json")
	require.Contains(t, saved.Artifacts, "xmldoc/SolidWorks.Interop.sldworks.xml")
	require.Contains(t, saved.Artifacts, "docs/api/types/ISketchManager/_overview.md")
}

func TestRun_Rerun_ProducesIdenticalArtifacts(t *testing.T) {
	cfg := fixtureConfig(t)

	_, err := Run(context.Background(), NewState(cfg, testLogger()))
	require.NoError(t, err)
	xmldocPath := filepath.Join(cfg.Output.Directory, "xmldoc", "SolidWorks.Interop.sldworks.xml")
	first, err := os.ReadFile(xmldocPath)
	require.NoError(t, err)

	_, err = Run(context.Background(), NewState(cfg, testLogger()))
	require.NoError(t, err)
	second, err := os.ReadFile(xmldocPath)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRun_MissingInputFile_RecordsErrorAndFails(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Inputs.MemberDetails = filepath.Join(t.TempDir(), "nope.xml")
	st := NewState(cfg, testLogger())

	rep, err := Run(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, "failed", rep.Outcome)
	require.Equal(t, 1, rep.Count(report.CodeMalformedInput))

	// The surviving inputs still render.
	require.FileExists(t, filepath.Join(cfg.Output.Directory, "xmldoc", "SolidWorks.Interop.sldworks.xml"))
}

func TestRun_DroppedRecords_CountedAsWarnings(t *testing.T) {
	cfg := fixtureConfig(t)
	broken := filepath.Join(t.TempDir(), "enums.xml")
	require.NoError(t, os.WriteFile(broken, []byte(`<Enums>
  <Enum><Name></Name><Assembly>A</Assembly><Namespace>N</Namespace></Enum>
  <Enum><Name>swOk_e</Name><Assembly>SolidWorks.Interop.swconst</Assembly><Namespace>SwConst</Namespace>
    <Members><Member><Name>swOk</Name></Member></Members></Enum>
</Enums>`), 0o644))
	cfg.Inputs.EnumMembers = broken
	st := NewState(cfg, testLogger())

	rep, err := Run(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, "completed_with_warnings", rep.Outcome)
	require.Equal(t, 1, rep.Stats.RecordsDropped)
	require.Equal(t, 1, rep.Count(report.CodeRecordDropped))
}

func TestRun_CategoriesApplied_FromHTMLTable(t *testing.T) {
	cfg := fixtureConfig(t)
	catFile := filepath.Join(t.TempDir(), "categories.html")
	require.NoError(t, os.WriteFile(catFile, []byte(`<html><body>
<h4><a name="sketching">Sketching</a></h4>
<ul><li><a href="sldworks~SldWorks.ISketchManager.html">ISketchManager</a></li></ul>
</body></html>`), 0o644))
	cfg.Categories.HTMLFile = catFile
	st := NewState(cfg, testLogger())

	rep, err := Run(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, "completed", rep.Outcome)

	overview, readErr := os.ReadFile(filepath.Join(cfg.Output.Directory, "docs", "api", "types", "ISketchManager", "_overview.md"))
	require.NoError(t, readErr)
	require.Contains(t, string(overview), "category: Sketching")
}

func TestRun_CanceledContext_StopsWithStageError(t *testing.T) {
	cfg := fixtureConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, NewState(cfg, testLogger()))
	require.Error(t, err)
	se := &StageError{}
	require.ErrorAs(t, err, &se)
	require.Equal(t, StageErrorCanceled, se.Kind)
}