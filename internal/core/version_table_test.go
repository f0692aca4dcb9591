package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"mdmctl/internal/types"
)

func TestVersionTableFormat(t *testing.T) {
	entries := []types.VersionEntry{
		{Version: "121.0", Label: "Firefox-121.0.pkg"},
		{Version: "9.1", Label: "-"},
		{Version: "120.0.1", Label: "Firefox-120.pkg"},
	}
	want := "" +
		"    121.0:  Firefox-121.0.pkg\n" +
		"      9.1:                  -\n" +
		"  120.0.1:    Firefox-120.pkg\n"
	if diff := cmp.Diff(want, FormatVersions(entries)); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
}

func TestVersionTableEmpty(t *testing.T) {
	assert.Equal(t, "", FormatVersions(nil))
	assert.Empty(t, NewVersionTable(nil).Lines(nil))
}

func TestVersionTableWidthComesFromAllEntries(t *testing.T) {
	all := []types.VersionEntry{
		{Version: "1.0", Label: "a"},
		{Version: "1.0.0-beta.10", Label: "Long Package Name"},
	}
	table := NewVersionTable(all)
	assert.Equal(t, len("1.0.0-beta.10"), table.VersionWidth())

	lines := table.Lines(FilterVersions(all, []string{"1.0"}))
	assert.Equal(t, []string{"            1.0:                  a"}, lines)
}

func TestVersionTableUsesDisplayWidth(t *testing.T) {
	entries := []types.VersionEntry{
		{Version: "1.0", Label: "日本語"},
		{Version: "2.0", Label: "abcdef"},
	}
	lines := NewVersionTable(entries).Lines(entries)
	assert.Equal(t, "  1.0:  日本語", lines[0])
	assert.Equal(t, "  2.0:  abcdef", lines[1])
}

func TestFilterVersions(t *testing.T) {
	entries := []types.VersionEntry{
		{Version: "1.0", Label: "a"},
		{Version: "2.0", Label: "b"},
		{Version: "3.0", Label: "c"},
	}
	assert.Equal(t, entries, FilterVersions(entries, nil))
	assert.Equal(t, []types.VersionEntry{{Version: "1.0", Label: "a"}}, FilterVersions(entries, []string{" 1.0 "}))
	assert.Empty(t, FilterVersions(entries, []string{"4.0"}))
}

func TestVersionTableAlignmentProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 15).Draw(t, "count")
		entries := make([]types.VersionEntry, 0, count)
		for i := 0; i < count; i++ {
			entries = append(entries, types.VersionEntry{
				Version: rapid.StringMatching(`[0-9][0-9a-z.\-]{0,11}`).Draw(t, "version"),
				Label:   rapid.StringMatching(`[A-Za-z0-9 _.\-]{0,16}`).Draw(t, "label"),
			})
		}
		table := NewVersionTable(entries)
		output := table.Format(entries)
		lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
		if len(lines) != len(entries) {
			t.Fatalf("got %d lines for %d entries", len(lines), len(entries))
		}
		colon := 2 + table.VersionWidth()
		for i, line := range lines {
			if strings.Index(line, ":") != colon {
				t.Fatalf("line %d colon at %d, want %d: %q", i, strings.Index(line, ":"), colon, line)
			}
			if len(line) != len(lines[0]) {
				t.Fatalf("line %d ends at %d, want %d: %q", i, len(line), len(lines[0]), line)
			}
			if !strings.HasSuffix(line, entries[i].Label) {
				t.Fatalf("line %d does not end with its label: %q", i, line)
			}
		}
	})
}
