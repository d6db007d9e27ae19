package xmldoc

import (
	"encoding/xml"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiforge/internal/entity"
	"git.home.luguber.info/inful/apiforge/internal/records"
	"git.home.luguber.info/inful/apiforge/internal/xref"
)

func testModel() *entity.Model {
	m := entity.NewModel()
	key := entity.TypeKey{Namespace: "Vendor.Sketch", Name: "ISketchManager"}
	m.Types[key] = &entity.Type{
		Name:        "ISketchManager",
		Assembly:    "VendorSketch",
		Namespace:   "Vendor.Sketch",
		Description: "Manages sketches & profiles.",
		Remarks:     "Obtain via the active document.",
		Members: []*entity.Member{
			{
				Name: "InsertSketch", Kind: entity.KindMethod,
				Description:    "Creates a sketch.",
				Returns:        "True on success.",
				Parameters:     []records.ParameterDoc{{Name: "updateEditRebuild", Description: "Whether to rebuild."}},
				ParameterTypes: []string{"System.Boolean"},
			},
			{Name: "Active", Kind: entity.KindProperty},
		},
		Examples: []records.ExampleRef{
			{Name: "Sketch Example", Language: "C#", URL: "/examples/sketch.html"},
			{Name: "VBA Example", Language: "VBA", URL: "/examples/sketch_vba.html"},
		},
	}
	enumKey := entity.TypeKey{Namespace: "Vendor.Sketch", Name: "swSketchSegments_e"}
	m.Types[enumKey] = &entity.Type{
		Name:      "swSketchSegments_e",
		Assembly:  "VendorSketch",
		Namespace: "Vendor.Sketch",
		IsEnum:    true,
		EnumMembers: []entity.EnumMember{
			{Name: "swSketchLINE", Description: "Line segment."},
			{Name: "swSketchARC"},
		},
	}
	m.Examples["examples/sketch.html"] = &entity.Example{
		URL:      "examples/sketch.html",
		Title:    "Sketch Example",
		Language: "C#",
		Content:  "Open a part first.<code>var ok = swApp.ActiveDoc != null && 1 < 2;</code>",
	}
	return m
}

func newRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	return &Renderer{
		OutDir:   dir,
		Rewriter: &xref.Rewriter{},
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}, dir
}

func renderedFile(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "VendorSketch.xml"))
	require.NoError(t, err)
	return string(data)
}

func TestRender_AssemblyFile_HasDocSkeleton(t *testing.T) {
	r, dir := newRenderer(t)
	res, err := r.Render(testModel())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	require.Equal(t, 2, res.Types)

	out := renderedFile(t, dir)
	require.Contains(t, out, "<doc>")
	require.Contains(t, out, "<name>VendorSketch</name>")
	require.Contains(t, out, "<members>")
}

func TestRender_TypeMember_CarriesSummaryAndRemarks(t *testing.T) {
	r, dir := newRenderer(t)
	_, err := r.Render(testModel())
	require.NoError(t, err)

	out := renderedFile(t, dir)
	require.Contains(t, out, `<member name="T:Vendor.Sketch.ISketchManager">`)
	require.Contains(t, out, "<summary>Manages sketches &amp; profiles.</summary>")
	require.Contains(t, out, "<remarks>Obtain via the active document.</remarks>")
}

func TestRender_MethodMember_HasParamsAndReturns(t *testing.T) {
	r, dir := newRenderer(t)
	_, err := r.Render(testModel())
	require.NoError(t, err)

	out := renderedFile(t, dir)
	require.Contains(t, out, `<member name="M:Vendor.Sketch.ISketchManager.InsertSketch(System.Boolean)">`)
	require.Contains(t, out, `<param name="updateEditRebuild">Whether to rebuild.</param>`)
	require.Contains(t, out, "<returns>True on success.</returns>")
}

func TestRender_UndocumentedProperty_GetsPlaceholderSummary(t *testing.T) {
	r, dir := newRenderer(t)
	_, err := r.Render(testModel())
	require.NoError(t, err)

	out := renderedFile(t, dir)
	require.Contains(t, out, `<member name="P:Vendor.Sketch.ISketchManager.Active">`)
	require.Contains(t, out, "<summary>Gets or sets Active.</summary>")
}

func TestRender_EnumMembers_EmitFieldIdentifiers(t *testing.T) {
	r, dir := newRenderer(t)
	res, err := r.Render(testModel())
	require.NoError(t, err)
	require.Equal(t, 2, res.EnumMembers)

	out := renderedFile(t, dir)
	require.Contains(t, out, `<member name="F:Vendor.Sketch.swSketchSegments_e.swSketchLINE">`)
	require.Contains(t, out, "<summary>Line segment.</summary>")
	// Undocumented enum values fall back to their own name.
	require.Contains(t, out, "<summary>swSketchARC</summary>")
	// Sorted by name: ARC before LINE.
	require.Less(t, strings.Index(out, "swSketchARC"), strings.Index(out, "swSketchLINE"))
}

func TestRender_CSharpExample_CodeWrappedInCDATA(t *testing.T) {
	r, dir := newRenderer(t)
	res, err := r.Render(testModel())
	require.NoError(t, err)
	require.Equal(t, 1, res.Examples)

	out := renderedFile(t, dir)
	require.Contains(t, out, "<example>Open a part first.<code><![CDATA[var ok = swApp.ActiveDoc != null && 1 < 2;]]></code></example>")
}

func TestRender_NonCSharpExample_Skipped(t *testing.T) {
	r, dir := newRenderer(t)
	_, err := r.Render(testModel())
	require.NoError(t, err)

	out := renderedFile(t, dir)
	require.NotContains(t, out, "sketch_vba")
}

func TestRender_ReservedCharactersInAttributes_StaysWellFormed(t *testing.T) {
	m := entity.NewModel()
	key := entity.TypeKey{Namespace: "Vendor.Sketch", Name: "IOddNames"}
	m.Types[key] = &entity.Type{
		Name:      "IOddNames",
		Assembly:  "VendorSketch",
		Namespace: "Vendor.Sketch",
		Members: []*entity.Member{
			{
				Name: "Convert", Kind: entity.KindMethod,
				Description: "Converts a value.",
				Parameters:  []records.ParameterDoc{{Name: `a&b"c`, Description: "Mixed name."}},
			},
		},
	}

	r, dir := newRenderer(t)
	_, err := r.Render(m)
	require.NoError(t, err)

	out := renderedFile(t, dir)
	require.Contains(t, out, `<param name="a&amp;b&quot;c">Mixed name.</param>`)

	var doc struct {
		Members []struct {
			Name string `xml:"name,attr"`
		} `xml:"members>member"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Members, 2)
}

func TestRender_SameModelTwice_ByteIdentical(t *testing.T) {
	r1, dir1 := newRenderer(t)
	_, err := r1.Render(testModel())
	require.NoError(t, err)

	r2, dir2 := newRenderer(t)
	_, err = r2.Render(testModel())
	require.NoError(t, err)

	require.Equal(t, renderedFile(t, dir1), renderedFile(t, dir2))
}
