package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	forgeerrors "git.home.luguber.info/inful/apiforge/internal/errors"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTypeListings_ParsesMembersAndDropsIncomplete(t *testing.T) {
	path := writeTemp(t, "listings.xml", `<Types>
	<Type>
		<Name>IModelDoc</Name>
		<Assembly>Vendor.Interop.core</Assembly>
		<Namespace>Vendor.Interop.core</Namespace>
		<PublicProperties>
			<Property><Name>Title</Name><Url>/core/IModelDoc~Title.html</Url></Property>
		</PublicProperties>
		<PublicMethods>
			<Method><Name>Save</Name><Url>/core/IModelDoc~Save.html</Url></Method>
			<Method><Name>Close</Name><Url>/core/IModelDoc~Close.html</Url></Method>
		</PublicMethods>
	</Type>
	<Type>
		<Name>MissingNamespace</Name>
		<Assembly>Vendor.Interop.core</Assembly>
	</Type>
</Types>`)

	listings, stats, err := LoadTypeListings(path)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Loaded)
	require.Equal(t, 1, stats.Dropped)
	require.Len(t, listings, 1)
	require.Equal(t, "IModelDoc", listings[0].Name)
	require.Len(t, listings[0].Properties, 1)
	require.Len(t, listings[0].Methods, 2)
	require.Equal(t, "/core/IModelDoc~Save.html", listings[0].Methods[0].URL)
}

func TestLoadTypeDetails_CleansProseAndExampleRefs(t *testing.T) {
	path := writeTemp(t, "details.xml", `<Types>
	<Type>
		<Name>IModelDoc</Name>
		<Assembly>Vendor.Interop.core</Assembly>
		<Namespace>Vendor.Interop.core</Namespace>
		<Description> Allows access to the model. </Description>
		<Remarks>See also.</Remarks>
		<Examples>
			<Example><Name>Save Model</Name><Language>CSharp</Language><Url>/core/Save_Example_CSharp.htm</Url></Example>
			<Example><Name></Name><Language>VBA</Language><Url>/core/other.htm</Url></Example>
		</Examples>
	</Type>
</Types>`)

	details, stats, err := LoadTypeDetails(path)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Loaded)
	require.Equal(t, "Allows access to the model.", details[0].Description)
	require.Len(t, details[0].Examples, 1, "example without a name is skipped")
	require.Equal(t, "CSharp", details[0].Examples[0].Language)
}

func TestLoadMemberDetails_RequiresQualifiedTypeName(t *testing.T) {
	path := writeTemp(t, "members.xml", `<Members>
	<Member>
		<Assembly>Vendor.Interop.core</Assembly>
		<Type>Vendor.Interop.core.IModelDoc</Type>
		<Name>Save</Name>
		<Signature>System.bool Save( System.string path )</Signature>
		<Description>Saves the document.</Description>
		<Returns>True if saved.</Returns>
		<Parameters>
			<Parameter><Name>path</Name><Description>Target path.</Description></Parameter>
		</Parameters>
	</Member>
	<Member>
		<Type>Unqualified</Type>
		<Name>Orphan</Name>
	</Member>
</Members>`)

	members, stats, err := LoadMemberDetails(path)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Loaded)
	require.Equal(t, 1, stats.Dropped)
	require.Equal(t, "Save", members[0].Name)
	require.Len(t, members[0].Parameters, 1)
	require.Equal(t, "Target path.", members[0].Parameters[0].Description)
}

func TestLoadEnumListings_ParsesGroupedMembers(t *testing.T) {
	path := writeTemp(t, "enums.xml", `<Enums>
	<Enum>
		<Name>swUnits_e</Name>
		<Assembly>Vendor.Interop.consts</Assembly>
		<Namespace>Vendor.Interop.consts</Namespace>
		<Members>
			<Member><Name>Millimeters</Name><Description>Millimeter units.</Description></Member>
			<Member><Name>Inches</Name><Description><![CDATA[Inch units.]]></Description></Member>
		</Members>
	</Enum>
</Enums>`)

	enums, stats, err := LoadEnumListings(path)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Loaded)
	require.Len(t, enums[0].Members, 2)
	require.Equal(t, "Inch units.", enums[0].Members[1].Description)
}

func TestLoadExamples_KeepsRawContent(t *testing.T) {
	path := writeTemp(t, "examples.xml", `<ExampleFiles>
	<Example>
		<Url>core/Save_Example_CSharp.htm</Url>
		<Content>Save a document.
&lt;code&gt;var doc = app.ActiveDoc;&lt;/code&gt;</Content>
	</Example>
	<Example><Url></Url><Content>dropped</Content></Example>
</ExampleFiles>`)

	examples, stats, err := LoadExamples(path)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Loaded)
	require.Equal(t, 1, stats.Dropped)
	require.Contains(t, examples[0].Content, "<code>var doc = app.ActiveDoc;</code>")
}

func TestLoad_MalformedXML_ReturnsParseError(t *testing.T) {
	path := writeTemp(t, "broken.xml", `<Types><Type><Name>Unclosed`)

	_, _, err := LoadTypeListings(path)
	require.Error(t, err)
	require.True(t, forgeerrors.IsCategory(err, forgeerrors.CategoryParse))
}

func TestLoad_MissingFile_ReturnsParseError(t *testing.T) {
	_, _, err := LoadExamples(filepath.Join(t.TempDir(), "nope.xml"))
	require.Error(t, err)
	require.True(t, forgeerrors.IsCategory(err, forgeerrors.CategoryParse))
}
