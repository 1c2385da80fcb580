package splint

import "strings"

// ParamAnnotation is one ":param" line extracted from a docstring.
// Type is empty when the annotation carries no type token.
type ParamAnnotation struct {
	Type        string
	Name        string
	Description string
}

// ReturnAnnotation is one ":return:" or ":rtype:" line extracted from a
// docstring. Tag is "return" or "rtype".
type ReturnAnnotation struct {
	Tag         string
	Description string
}

// DocStr holds the structured annotations extracted from a docstring.
// Text is the raw docstring, empty when the definition has none. The
// annotation slices preserve document order and are never mutated after
// construction.
type DocStr struct {
	Text    string
	Params  []ParamAnnotation
	Returns []ReturnAnnotation
}

// NewDocStr extracts parameter and return annotations from raw docstring
// text. The micro-format is line-local: each annotation spans exactly one
// line, multi-line descriptions are not recognized.
func NewDocStr(text string) DocStr {
	return DocStr{
		Text:    text,
		Params:  paramAnnotations(text),
		Returns: returnAnnotations(text),
	}
}

// paramAnnotations matches lines of the form
//
//	:param TYPE NAME: DESCRIPTION
//
// where TYPE is an optional run of non-whitespace characters. NAME, TYPE
// and DESCRIPTION are trimmed of surrounding whitespace. Lines with other
// content before ":param", or with more than two tokens before the colon,
// do not match.
func paramAnnotations(text string) []ParamAnnotation {
	var params []ParamAnnotation
	for _, line := range strings.Split(text, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), ":param")
		if !ok || rest == "" {
			continue
		}
		// A whitespace separator after ":param" is required, so that
		// e.g. ":parameter" does not match.
		if rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		head, desc, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		var typ, name string
		switch fields := strings.Fields(head); len(fields) {
		case 1:
			name = fields[0]
		case 2:
			typ, name = fields[0], fields[1]
		default:
			continue
		}
		params = append(params, ParamAnnotation{
			Type:        typ,
			Name:        name,
			Description: strings.TrimSpace(desc),
		})
	}
	return params
}

// returnAnnotations matches lines of the form ":return: DESCRIPTION" and
// ":rtype: DESCRIPTION", in document order.
func returnAnnotations(text string) []ReturnAnnotation {
	var returns []ReturnAnnotation
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		for _, tag := range []string{"return", "rtype"} {
			desc, ok := strings.CutPrefix(trimmed, ":"+tag+":")
			if !ok {
				continue
			}
			returns = append(returns, ReturnAnnotation{
				Tag:         tag,
				Description: strings.TrimSpace(desc),
			})
			break
		}
	}
	return returns
}
