// Package validator checks that a translation preserved the format
// directives of its source string.
package validator

import (
	"fmt"
	"strings"

	"github.com/yagoveloso/po-translator-llm/internal/placeholder"
)

// CheckDirectives compares the format directives (printf verbs, %(name)s
// conversions, {name} substitutions) of source and translation. It returns
// an error naming the missing directives when the translation dropped any;
// extra directives in the translation are tolerated, since target grammar
// may legitimately repeat one.
func CheckDirectives(source, translation string) error {
	want := placeholder.Directives(source)
	if len(want) == 0 {
		return nil
	}

	have := make(map[string]int)
	for _, d := range placeholder.Directives(translation) {
		have[d]++
	}

	var missing []string
	for _, d := range want {
		if have[d] > 0 {
			have[d]--
			continue
		}
		missing = append(missing, d)
	}
	if len(missing) > 0 {
		return fmt.Errorf("translation dropped format directives: %s", strings.Join(missing, ", "))
	}
	return nil
}
