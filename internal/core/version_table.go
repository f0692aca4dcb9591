package core

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"mdmctl/internal/types"
)

// displayWidth is pinned to narrow East Asian widths so the table lays out
// the same whatever the operator's locale is.
var displayWidth = &runewidth.Condition{EastAsianWidth: false}

// VersionTable aligns version rows. Widths are fixed at construction from
// the full entry list, so rendering a subset keeps the same columns.
type VersionTable struct {
	versionWidth int
	labelWidth   int
}

func NewVersionTable(entries []types.VersionEntry) VersionTable {
	table := VersionTable{}
	for _, entry := range entries {
		if width := displayWidth.StringWidth(entry.Version); width > table.versionWidth {
			table.versionWidth = width
		}
		if width := displayWidth.StringWidth(entry.Label); width > table.labelWidth {
			table.labelWidth = width
		}
	}
	return table
}

func (t VersionTable) VersionWidth() int {
	return t.versionWidth
}

func (t VersionTable) Lines(entries []types.VersionEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, "  "+
			displayWidth.FillLeft(entry.Version, t.versionWidth)+
			":  "+
			displayWidth.FillLeft(entry.Label, t.labelWidth))
	}
	return lines
}

func (t VersionTable) Format(entries []types.VersionEntry) string {
	lines := t.Lines(entries)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func FormatVersions(entries []types.VersionEntry) string {
	return NewVersionTable(entries).Format(entries)
}

// FilterVersions keeps the entries whose version is one of labels. No
// labels keeps everything.
func FilterVersions(entries []types.VersionEntry, labels []string) []types.VersionEntry {
	if len(labels) == 0 {
		return entries
	}
	wanted := map[string]struct{}{}
	for _, label := range labels {
		wanted[strings.TrimSpace(label)] = struct{}{}
	}
	var out []types.VersionEntry
	for _, entry := range entries {
		if _, ok := wanted[entry.Version]; ok {
			out = append(out, entry)
		}
	}
	return out
}
