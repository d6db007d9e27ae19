package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeID_SimpleType_UsesTMarker(t *testing.T) {
	require.Equal(t, "T:Vendor.Interop.core.IModelDoc", TypeID("Vendor.Interop.core", "IModelDoc"))
}

func TestPropertyID_NoParameters_BareName(t *testing.T) {
	require.Equal(t, "P:System.String.Length", PropertyID("System", "String", "Length", nil))
}

func TestPropertyID_IndexedProperty_ParenthesizedParameters(t *testing.T) {
	id := PropertyID("System", "String", "Chars", []string{"System.Int32"})
	require.Equal(t, "P:System.String.Chars(System.Int32)", id)
}

func TestMethodID_WithParameters_JoinsWithCommas(t *testing.T) {
	id := MethodID("System", "String", "Substring", []string{"System.Int32", "System.Int32"})
	require.Equal(t, "M:System.String.Substring(System.Int32,System.Int32)", id)
}

func TestMethodID_Overloads_DifferOnlyInParameterSegment(t *testing.T) {
	a := MethodID("N", "IFoo", "Bar", []string{"System.Int32"})
	b := MethodID("N", "IFoo", "Bar", []string{"System.String"})
	require.NotEqual(t, a, b)
	require.Equal(t, "M:N.IFoo.Bar(System.Int32)", a)
	require.Equal(t, "M:N.IFoo.Bar(System.String)", b)
}

func TestMethodID_UnknownParameters_CollapseToBareName(t *testing.T) {
	a := MethodID("N", "IFoo", "Bar", nil)
	b := MethodID("N", "IFoo", "Bar", nil)
	require.Equal(t, "M:N.IFoo.Bar", a)
	require.Equal(t, a, b)
}

func TestFieldID_EnumMember_UsesFMarker(t *testing.T) {
	require.Equal(t, "F:Vendor.consts.swUnits_e.Millimeters", FieldID("Vendor.consts", "swUnits_e", "Millimeters"))
}

func TestStripMarker_RemovesKindPrefix(t *testing.T) {
	require.Equal(t, "N.IFoo.Bar", StripMarker("M:N.IFoo.Bar"))
	require.Equal(t, "N.IFoo", StripMarker("T:N.IFoo"))
	require.Equal(t, "already.bare", StripMarker("already.bare"))
}

func TestSynthesis_NeverContainsWhitespace(t *testing.T) {
	inputs := []string{
		MethodID("N ", " IFoo", " Bar ", []string{" System.Int32 ", "ref System.bool "}),
		PropertyID("N", "IFoo", "Baz Qux", nil),
		TypeID("Vendor. Interop", "IType "),
	}
	for _, id := range inputs {
		require.NotContains(t, id, " ")
		require.NotContains(t, id, "\t")
	}
}

func TestSynthesis_IsDeterministic(t *testing.T) {
	params := []string{"System.String", "out System.int"}
	first := MethodID("N", "IFoo", "Bar", params)
	for range 10 {
		require.Equal(t, first, MethodID("N", "IFoo", "Bar", params))
	}
}

func TestEncodeParameterType_IntrinsicTypes(t *testing.T) {
	require.Equal(t, "System.Int32", EncodeParameterType("int"))
	require.Equal(t, "System.String", EncodeParameterType("string"))
	require.Equal(t, "System.Int32", EncodeParameterType("System.int"))
	require.Equal(t, "System.Boolean", EncodeParameterType("System.bool"))
	require.Equal(t, "Vendor.ICustom", EncodeParameterType("Vendor.ICustom"))
}

func TestEncodeParameterType_Byref(t *testing.T) {
	require.Equal(t, "System.Int32@", EncodeParameterType("ref int"))
	require.Equal(t, "System.Boolean@", EncodeParameterType("out System.bool"))
	require.Equal(t, "System.Double@", EncodeParameterType("in double"))
}

func TestEncodeParameterType_Arrays(t *testing.T) {
	require.Equal(t, "System.Int32[]", EncodeParameterType("int[]"))
	require.Equal(t, "System.Object[0:,0:]", EncodeParameterType("object[0:,0:]"))
}

func TestEncodeParameterType_Pointers(t *testing.T) {
	require.Equal(t, "System.Int32*", EncodeParameterType("int*"))
	require.Equal(t, "System.Void*", EncodeParameterType("void *"))
}

func TestEncodeParameterType_ByrefArray(t *testing.T) {
	require.Equal(t, "System.Int32[]@", EncodeParameterType("ref int[]"))
}

func TestParseSignatureParameters_NoParens_ReturnsNil(t *testing.T) {
	require.Nil(t, ParseSignatureParameters("System.bool SomeProperty"))
	require.Nil(t, ParseSignatureParameters(""))
}

func TestParseSignatureParameters_EmptyList_ReturnsNil(t *testing.T) {
	require.Nil(t, ParseSignatureParameters("void Method()"))
	require.Nil(t, ParseSignatureParameters("void Method(  )"))
}

func TestParseSignatureParameters_SingleParameter(t *testing.T) {
	params := ParseSignatureParameters("void Method( System.string param1 )")
	require.Equal(t, []string{"System.String"}, params)
}

func TestParseSignatureParameters_ByrefParameter(t *testing.T) {
	params := ParseSignatureParameters("void Method( System.string p1, out System.int p2 )")
	require.Equal(t, []string{"System.String", "System.Int32@"}, params)
}

func TestParseSignatureParameters_GenericNesting_DoesNotSplitInsideAngles(t *testing.T) {
	params := ParseSignatureParameters("void Method( System.Collections.Generic.Dictionary<string,int> map, bool flag )")
	require.Len(t, params, 2)
	require.Equal(t, "System.Boolean", params[1])
	require.True(t, strings.HasPrefix(params[0], "System.Collections.Generic.Dictionary"))
}
