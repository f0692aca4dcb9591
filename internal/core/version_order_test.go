package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mdmctl/internal/types"
)

func versionsOf(entries []types.VersionEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Version)
	}
	return out
}

func TestSortVersionsNatural(t *testing.T) {
	entries := []types.VersionEntry{
		{Version: "10.0", Label: "c"},
		{Version: "9.2", Label: "b"},
		{Version: "9.10", Label: "d"},
		{Version: "1.0rc1", Label: "a"},
		{Version: "1.0", Label: "e"},
	}
	sorted := SortVersions(entries)
	assert.Equal(t, []string{"1.0rc1", "1.0", "9.2", "9.10", "10.0"}, versionsOf(sorted))
	assert.Equal(t, "10.0", entries[0].Version, "input must not be reordered")
}

func TestSortVersionsDebianStyle(t *testing.T) {
	entries := []types.VersionEntry{
		{Version: "2:1.0-1"},
		{Version: "1.0~beta1-1"},
		{Version: "1.0-1"},
	}
	assert.Equal(t, []string{"1.0~beta1-1", "1.0-1", "2:1.0-1"}, versionsOf(SortVersions(entries)))
}

func TestVersionOrderFallsBackToByteOrder(t *testing.T) {
	order := newVersionOrder()
	assert.Equal(t, -1, order.compare("latest", "nightly"))
	assert.Equal(t, 0, order.compare("1.0", "1.0"))
	assert.Equal(t, 1, order.compare("2.0", "1.0"))
}

func TestSortVersionsEmpty(t *testing.T) {
	assert.Empty(t, SortVersions(nil))
}
