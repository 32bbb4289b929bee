package dispatch

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{key}} tokens inside argv elements.
var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExpandArgv substitutes captured prompt values into argv placeholders.
// Tokens whose key has no capture are left untouched so a typo surfaces
// in the echoed command instead of silently vanishing.
func ExpandArgv(argv []string, captures map[string]string) []string {
	if len(captures) == 0 {
		return argv
	}

	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = expandArg(arg, captures)
	}
	return out
}

func expandArg(arg string, captures map[string]string) string {
	if !strings.Contains(arg, "{{") {
		return arg
	}
	return placeholderPattern.ReplaceAllStringFunc(arg, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		if value, ok := captures[key]; ok {
			return value
		}
		return token
	})
}
