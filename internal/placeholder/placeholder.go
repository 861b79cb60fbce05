// Package placeholder protects format directives (printf-style verbs,
// Python %(name)s conversions, {name} substitutions) during translation by
// replacing them with numbered markers ([PH0], [PH1], …) that machine
// translation leaves intact. After translation, Restore substitutes the
// markers back.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Python named conversions: %(count)d
	rePythonNamed = regexp.MustCompile(`%\([A-Za-z_][A-Za-z0-9_]*\)[#0\- +]*[0-9*]*(?:\.[0-9*]+)?[diouxXeEfgGcrs]`)

	// printf verbs: %s, %d, %.2f, %-5s, %%
	rePrintf = regexp.MustCompile(`%[#0\- +]*[0-9*]*(?:\.[0-9*]+)?[a-zA-Z%]`)

	// brace substitutions: {name}, {0}
	reBrace = regexp.MustCompile(`\{[A-Za-z0-9_]*\}`)

	// placeholder reference in translated text
	rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Directives returns the format directives found in text, in order.
func Directives(text string) []string {
	var found []string
	found = append(found, rePythonNamed.FindAllString(text, -1)...)
	stripped := rePythonNamed.ReplaceAllString(text, "")
	found = append(found, rePrintf.FindAllString(stripped, -1)...)
	found = append(found, reBrace.FindAllString(text, -1)...)
	return found
}

// Protect replaces format directives with numbered placeholders [PH0],
// [PH1], … in the order they appear in text. It returns the modified text
// and the slice of captured originals so Restore can put them back.
func Protect(text string) (string, []string) {
	var markers []string
	counter := 0

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", counter)
		markers = append(markers, match)
		counter++
		return id
	}

	// Order matters: named conversions first (they contain printf-shaped
	// tails), then bare verbs, then brace substitutions.
	text = rePythonNamed.ReplaceAllStringFunc(text, replace)
	text = rePrintf.ReplaceAllStringFunc(text, replace)
	text = reBrace.ReplaceAllStringFunc(text, replace)

	return text, markers
}

// Restore substitutes [PHn] markers in text back with the originals
// captured by Protect. Unrecognised indices leave the placeholder as-is.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		if idx < 0 || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// Validate checks whether all markers created by Protect are still present
// in the translated text. It returns the list of missing indices.
func Validate(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
