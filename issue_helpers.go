package menucc

import "github.com/menucc/menucc/i18n"

// IssueAt creates an Issue at the given path with provided code, rule and params map.
// The message is resolved through the i18n catalog; this keeps call sites with
// many parameters readable.
func IssueAt(p PathRef, code, rule string, params map[string]any) Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = stringify(v)
	}
	return Issue{Path: p.Pointer(), Code: code, Rule: rule, Message: i18n.T(code, data), Params: params}
}

// WarnAt is IssueAt with warning severity.
func WarnAt(p PathRef, code, rule string, params map[string]any) Issue {
	it := IssueAt(p, code, rule, params)
	it.Severity = Warn
	return it
}
