// Package pofile implements reading and writing of gettext-style PO
// catalogs. Parsing is deliberately lenient: lines that match no known
// construct are skipped, and no parse error is ever raised.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry is a single translatable message in a catalog.
type Entry struct {
	// Comments holds the comment lines preceding the entry, verbatim
	// (including the leading marker, e.g. "#. extracted note").
	Comments []string
	// MsgID is the untranslated source string and the entry's unique key.
	MsgID string
	// MsgStr is the translation. Empty or equal to MsgID means pending.
	MsgStr string
	// Line is the 1-based line number of the msgid declaration, for
	// diagnostics only. Zero for entries built in memory.
	Line int
}

// Pending reports whether the entry still needs a translation.
func (e *Entry) Pending() bool {
	return e.MsgStr == "" || e.MsgStr == e.MsgID
}

// Context joins the entry's comment lines into a single space-separated
// string, suitable as translation context for a provider.
func (e *Entry) Context() string {
	return strings.Join(e.Comments, " ")
}

// File is a parsed catalog: header metadata plus ordered entries.
type File struct {
	// Header holds the catalog metadata (Language, Plural-Forms, …).
	// Key order is not significant.
	Header map[string]string
	// Entries are the translatable messages, in file order.
	Entries []*Entry
}

// NewFile creates an empty catalog.
func NewFile() *File {
	return &File{Header: make(map[string]string)}
}

// HeaderField returns a header value by case-insensitive key name.
func (f *File) HeaderField(name string) string {
	for k, v := range f.Header {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// SetHeaderField sets a header value, replacing a case-insensitive match.
func (f *File) SetHeaderField(name, value string) {
	if f.Header == nil {
		f.Header = make(map[string]string)
	}
	for k := range f.Header {
		if strings.EqualFold(k, name) {
			delete(f.Header, k)
			break
		}
	}
	f.Header[name] = value
}

// EntryByMsgID finds an entry by its msgid.
func (f *File) EntryByMsgID(msgid string) *Entry {
	for _, e := range f.Entries {
		if e.MsgID == msgid {
			return e
		}
	}
	return nil
}

// PendingEntries returns the entries that still need translation.
func (f *File) PendingEntries() []*Entry {
	var result []*Entry
	for _, e := range f.Entries {
		if e.MsgID != "" && e.Pending() {
			result = append(result, e)
		}
	}
	return result
}

// Stats returns translation statistics.
func (f *File) Stats() (total, translated, pending int) {
	for _, e := range f.Entries {
		if e.MsgID == "" {
			continue
		}
		total++
		if e.Pending() {
			pending++
		} else {
			translated++
		}
	}
	return
}

// Parse reads a catalog from r.
//
// The grammar is line-oriented: a blank line terminates the entry being
// accumulated, "#"-prefixed lines buffer as comments, msgid/msgstr lines
// begin field accumulation, and bare quoted lines continue the active
// field. The very first msgid in the file with an empty value marks the
// header carrier; its msgstr is parsed as "Key: value" pairs into Header
// and the carrier itself is discarded. Anything else is silently skipped.
// Only I/O errors are returned.
func Parse(r io.Reader) (*File, error) {
	f := NewFile()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var current *Entry
	var lastField string // "msgid" or "msgstr"
	headerCarrier := false
	seenMsgID := false
	lineNum := 0

	flush := func() {
		if current == nil || (current.MsgID == "" && current.MsgStr == "") {
			current = nil
			lastField = ""
			headerCarrier = false
			return
		}
		// Continuation lines may have grown an initially-empty msgid; only
		// a still-empty one is the header carrier.
		if headerCarrier && current.MsgID == "" {
			parseHeaderBlock(f, current.MsgStr)
		} else {
			f.Entries = append(f.Entries, current)
		}
		current = nil
		lastField = ""
		headerCarrier = false
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, "#") {
			if current == nil {
				current = &Entry{}
			}
			current.Comments = append(current.Comments, line)
			continue
		}

		if strings.HasPrefix(line, "msgid ") {
			if current == nil {
				current = &Entry{}
			}
			current.MsgID = decode(unquote(strings.TrimPrefix(line, "msgid ")))
			current.Line = lineNum
			lastField = "msgid"
			if !seenMsgID && current.MsgID == "" {
				headerCarrier = true
			}
			seenMsgID = true
			continue
		}

		if strings.HasPrefix(line, "msgstr ") {
			if current == nil {
				current = &Entry{}
			}
			current.MsgStr = decode(unquote(strings.TrimPrefix(line, "msgstr ")))
			lastField = "msgstr"
			continue
		}

		if strings.HasPrefix(line, "\"") {
			val := decode(unquote(line))
			switch lastField {
			case "msgid":
				current.MsgID += val
			case "msgstr":
				current.MsgStr += val
			}
			continue
		}

		// Unrecognized construct: skipped by design.
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	return f, nil
}

// ParseFile reads a catalog from disk.
func ParseFile(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

// parseHeaderBlock splits a header carrier's msgstr into "Key: value"
// pairs. Lines without a colon are ignored.
func parseHeaderBlock(f *File, block string) {
	for _, line := range strings.Split(block, "\n") {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key != "" {
			f.Header[key] = val
		}
	}
}

// Write serializes the catalog: the header carrier, a blank line, then
// each entry (comments verbatim, msgid, msgstr) followed by a blank line.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "msgid \"\"\nmsgstr \"%s\"\n\n", encode(f.headerBlock()))

	for _, e := range f.Entries {
		for _, c := range e.Comments {
			fmt.Fprintln(bw, c)
		}
		fmt.Fprintf(bw, "msgid \"%s\"\n", encode(e.MsgID))
		fmt.Fprintf(bw, "msgstr \"%s\"\n", encode(e.MsgStr))
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// WriteFile serializes the catalog to disk, overwriting path.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return f.Write(out)
}

// headerBlock joins header pairs with newlines, keys sorted so output is
// deterministic. A trailing newline matches gettext convention.
func (f *File) headerBlock() string {
	if len(f.Header) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f.Header))
	for k := range f.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(f.Header[k])
		sb.WriteString("\n")
	}
	return sb.String()
}

// unquote strips one pair of surrounding double quotes, leniently: input
// without both quotes is returned trimmed but otherwise as-is.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// decode unescapes \n, \t, \" and \\ — sequentially, in that order. No
// other escapes are recognized.
func decode(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// encode is the reverse of decode: backslash, quote, newline, tab.
func encode(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
