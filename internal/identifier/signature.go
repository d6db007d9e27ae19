package identifier

import "strings"

// ParseSignatureParameters extracts encoded parameter types from a display
// signature like:
//
//	"System.bool Method( System.string p1, out System.int p2 )"
//
// It returns nil when the signature carries no parameter list or the list is
// empty. This is the only source of parameter metadata available: the vendor
// documentation does not expose reflection-quality type data, so members
// without a usable signature degrade to bare-name identifiers.
func ParseSignatureParameters(signature string) []string {
	if signature == "" {
		return nil
	}

	open := strings.Index(signature, "(")
	if open < 0 {
		return nil
	}
	closing := strings.Index(signature[open:], ")")
	if closing < 0 {
		return nil
	}
	paramsStr := strings.TrimSpace(signature[open+1 : open+closing])
	if paramsStr == "" {
		return nil
	}

	var parameters []string
	var current strings.Builder
	depth := 0 // generic nesting depth, commas inside <> do not split

	flush := func() {
		param := strings.TrimSpace(current.String())
		current.Reset()
		if param == "" {
			return
		}
		if typ := extractParameterType(param); typ != "" {
			parameters = append(parameters, typ)
		}
	}

	for _, ch := range paramsStr {
		switch {
		case ch == '<':
			depth++
			current.WriteRune(ch)
		case ch == '>':
			depth--
			current.WriteRune(ch)
		case ch == ',' && depth == 0:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	if len(parameters) == 0 {
		return nil
	}
	return parameters
}

// extractParameterType pulls the encoded type out of a single parameter
// declaration like "System.string paramName" or "out System.int paramName".
func extractParameterType(param string) string {
	param = strings.TrimSpace(param)
	if param == "" {
		return ""
	}

	byref := false
	for _, mod := range []string{"out ", "ref ", "in "} {
		if strings.HasPrefix(param, mod) {
			byref = true
			param = strings.TrimSpace(param[len(mod):])
			break
		}
	}

	tokens := strings.Fields(param)
	if len(tokens) == 0 {
		return ""
	}

	// The last token is the parameter name; everything before it is the type.
	typeStr := tokens[0]
	if len(tokens) > 1 {
		typeStr = strings.Join(tokens[:len(tokens)-1], " ")
	}

	if byref {
		typeStr = "ref " + typeStr
	}
	return EncodeParameterType(typeStr)
}
