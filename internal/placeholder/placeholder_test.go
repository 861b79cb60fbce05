package placeholder

import (
	"reflect"
	"testing"
)

func TestProtect_PrintfVerbs(t *testing.T) {
	text := "Found %d files in %s"

	protected, markers := Protect(text)

	if protected != "Found [PH0] files in [PH1]" {
		t.Errorf("unexpected protected text: %q", protected)
	}
	if !reflect.DeepEqual(markers, []string{"%d", "%s"}) {
		t.Errorf("unexpected markers: %v", markers)
	}
}

func TestProtect_PythonNamed(t *testing.T) {
	text := "Deleted %(count)d items from %(folder)s"

	protected, markers := Protect(text)

	if protected != "Deleted [PH0] items from [PH1]" {
		t.Errorf("unexpected protected text: %q", protected)
	}
	if !reflect.DeepEqual(markers, []string{"%(count)d", "%(folder)s"}) {
		t.Errorf("unexpected markers: %v", markers)
	}
}

func TestProtect_BraceSubstitutions(t *testing.T) {
	text := "Hello {name}, you have {0} messages"

	protected, markers := Protect(text)

	if protected != "Hello [PH0], you have [PH1] messages" {
		t.Errorf("unexpected protected text: %q", protected)
	}
	if !reflect.DeepEqual(markers, []string{"{name}", "{0}"}) {
		t.Errorf("unexpected markers: %v", markers)
	}
}

func TestProtect_NoDirectives(t *testing.T) {
	protected, markers := Protect("plain text")
	if protected != "plain text" {
		t.Errorf("text without directives changed: %q", protected)
	}
	if len(markers) != 0 {
		t.Errorf("expected no markers, got %v", markers)
	}
}

func TestRestore(t *testing.T) {
	_, markers := Protect("Found %d files in %s")

	restored := Restore("Знайдено [PH0] файлів у [PH1]", markers)

	if restored != "Знайдено %d файлів у %s" {
		t.Errorf("unexpected restored text: %q", restored)
	}
}

func TestRestore_UnknownIndexLeftAsIs(t *testing.T) {
	restored := Restore("text [PH5] here", []string{"%d"})
	if restored != "text [PH5] here" {
		t.Errorf("out-of-range placeholder must stay: %q", restored)
	}
}

func TestProtectRestore_RoundTrip(t *testing.T) {
	texts := []string{
		"Progress: %d%% complete",
		"%(user)s moved {count} files to %s",
		"Width: %-5.2f units",
	}
	for _, text := range texts {
		protected, markers := Protect(text)
		if got := Restore(protected, markers); got != text {
			t.Errorf("round trip changed %q -> %q", text, got)
		}
	}
}

func TestValidate_MissingMarkers(t *testing.T) {
	_, markers := Protect("%s and %d")

	missing := Validate("only [PH1] survived", markers)

	if !reflect.DeepEqual(missing, []int{0}) {
		t.Errorf("expected missing [0], got %v", missing)
	}
}

func TestDirectives(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no directives here", nil},
		{"%s and %d", []string{"%s", "%d"}},
		{"%(name)s then {x}", []string{"%(name)s", "{x}"}},
	}
	for _, tt := range tests {
		if got := Directives(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Directives(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
