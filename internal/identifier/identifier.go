// Package identifier synthesizes canonical XMLDoc-style identifier strings
// for types and members. Identifiers are the join key across all merge inputs
// and the addressing scheme in both output projections.
//
// ID format: {marker}:{fully_qualified_name}[(parameters)]
//
// Markers:
//   - T: type (class, interface, struct, enum, delegate)
//   - P: property
//   - M: method
//   - F: field (includes enum members)
//   - E: event
//
// Synthesis is a pure function of its inputs: no counters, no hidden state,
// and the produced identifier never contains whitespace.
package identifier

import "strings"

// Kind marker prefixes.
const (
	MarkerType     = "T"
	MarkerProperty = "P"
	MarkerMethod   = "M"
	MarkerField    = "F"
	MarkerEvent    = "E"
)

// intrinsicTypes maps language keyword type names to fully qualified names.
// Both the bare keyword ("int") and the loosely qualified form sometimes seen
// in crawled signatures ("System.int") normalize to the canonical name.
var intrinsicTypes = map[string]string{
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"bool":    "System.Boolean",
	"char":    "System.Char",
	"float":   "System.Single",
	"double":  "System.Double",
	"decimal": "System.Decimal",
	"string":  "System.String",
	"object":  "System.Object",
	"void":    "System.Void",
}

// TypeID generates the identifier for a type: T:Namespace.TypeName
func TypeID(namespace, typeName string) string {
	return MarkerType + ":" + fqn(namespace, typeName)
}

// PropertyID generates the identifier for a property:
// P:Namespace.TypeName.PropertyName or, for indexed properties with known
// parameter types, P:Namespace.TypeName.PropertyName(Type1,Type2)
func PropertyID(namespace, typeName, propertyName string, parameters []string) string {
	return memberID(MarkerProperty, namespace, typeName, propertyName, parameters)
}

// MethodID generates the identifier for a method:
// M:Namespace.TypeName.MethodName or M:Namespace.TypeName.MethodName(Type1,Type2)
func MethodID(namespace, typeName, methodName string, parameters []string) string {
	return memberID(MarkerMethod, namespace, typeName, methodName, parameters)
}

// FieldID generates the identifier for a field, including enum members:
// F:Namespace.TypeName.FieldName
func FieldID(namespace, typeName, fieldName string) string {
	return MarkerField + ":" + fqn(namespace, typeName) + "." + strip(fieldName)
}

// EventID generates the identifier for an event: E:Namespace.TypeName.EventName
func EventID(namespace, typeName, eventName string) string {
	return MarkerEvent + ":" + fqn(namespace, typeName) + "." + strip(eventName)
}

// StripMarker removes the leading kind marker ("M:", "P:", ...) from an
// identifier, yielding the bare fully qualified name used by cref targets.
func StripMarker(id string) string {
	if len(id) > 2 && id[1] == ':' {
		return id[2:]
	}
	return id
}

// Valid reports whether id is a well-formed identifier: a known kind marker,
// no whitespace, and no empty dotted components in the qualified name.
func Valid(id string) bool {
	if len(id) < 3 || id[1] != ':' {
		return false
	}
	switch string(id[0]) {
	case MarkerType, MarkerProperty, MarkerMethod, MarkerField, MarkerEvent:
	default:
		return false
	}
	fqn := id[2:]
	if strings.ContainsAny(fqn, " \t\n") {
		return false
	}
	// Parameter list does not participate in the dotted-component check.
	if idx := strings.IndexByte(fqn, '('); idx >= 0 {
		fqn = fqn[:idx]
	}
	if strings.Contains(fqn, "..") || strings.HasPrefix(fqn, ".") || strings.HasSuffix(fqn, ".") {
		return false
	}
	return strings.Contains(fqn, ".")
}

func memberID(marker, namespace, typeName, memberName string, parameters []string) string {
	id := marker + ":" + fqn(namespace, typeName) + "." + strip(memberName)
	if len(parameters) == 0 {
		return id
	}
	encoded := make([]string, len(parameters))
	for i, p := range parameters {
		encoded[i] = EncodeParameterType(p)
	}
	return id + "(" + strings.Join(encoded, ",") + ")"
}

func fqn(namespace, typeName string) string {
	return strip(namespace) + "." + strip(typeName)
}

// strip removes every whitespace character. Source signatures routinely carry
// spaces after commas or around type names; identifiers never may.
func strip(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

// EncodeParameterType encodes one parameter type according to XMLDoc rules:
//   - intrinsic keywords become full type names (int -> System.Int32)
//   - ref/out/in parameters get a trailing @
//   - pointer types get a trailing *
//   - array suffixes ([] or bounded forms) are preserved after the base type
//
// Array, byref, and pointer markers are applied after the base type name.
func EncodeParameterType(typeStr string) string {
	typeStr = strings.TrimSpace(typeStr)

	byref := false
	for _, mod := range []string{"ref ", "out ", "in "} {
		if strings.HasPrefix(typeStr, mod) {
			byref = true
			typeStr = strings.TrimSpace(typeStr[len(mod):])
			break
		}
	}

	arraySuffix := ""
	if strings.HasSuffix(typeStr, "[]") {
		arraySuffix = "[]"
		typeStr = typeStr[:len(typeStr)-2]
	} else if open := strings.LastIndex(typeStr, "["); open > 0 && strings.HasSuffix(typeStr, "]") {
		if isArrayBounds(typeStr[open+1 : len(typeStr)-1]) {
			arraySuffix = typeStr[open:]
			typeStr = typeStr[:open]
		}
	}

	pointerSuffix := ""
	if strings.HasSuffix(typeStr, "*") {
		pointerSuffix = "*"
		typeStr = strings.TrimSpace(typeStr[:len(typeStr)-1])
	}

	typeStr = normalizeIntrinsic(strip(typeStr))

	result := typeStr + pointerSuffix + arraySuffix
	if byref {
		result += "@"
	}
	return result
}

// normalizeIntrinsic maps keyword type names (bare or "System."-prefixed) to
// their canonical fully qualified form.
func normalizeIntrinsic(typeStr string) string {
	if full, ok := intrinsicTypes[typeStr]; ok {
		return full
	}
	if rest, ok := strings.CutPrefix(typeStr, "System."); ok {
		if full, found := intrinsicTypes[rest]; found {
			return full
		}
	}
	return typeStr
}

func isArrayBounds(s string) bool {
	for _, r := range s {
		switch {
		case r == ',' || r == ':':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
