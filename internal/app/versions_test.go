package app

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdmctl/internal/types"
)

func TestVersions(t *testing.T) {
	store := newStubStore()
	seedPatch(t, store)
	svc := Service{Store: store}

	result, err := svc.Versions(t.Context(), VersionsRequest{Title: "Firefox"})
	require.NoError(t, err)
	assert.Equal(t, "4", result.Title.ID)
	assert.Equal(t, []string{
		"    121.0:  Firefox-121.0.pkg",
		"      9.1:                  -",
		"  120.0.1:    Firefox-120.pkg",
	}, result.Packages.Lines())
	assert.Equal(t, []string{
		"    121.0:     Firefox - Testing",
		"  120.0.1:  Firefox - Production",
	}, result.Policies.Lines())
}

func TestVersionsSingleVersionTitle(t *testing.T) {
	store := newStubStore()
	seedPatch(t, store)
	svc := Service{Store: store}

	result, err := svc.Versions(t.Context(), VersionsRequest{Title: "Zoom"})
	require.NoError(t, err)
	assert.Equal(t, []types.VersionEntry{{Version: "5.17.0", Label: "Zoom.pkg"}}, result.Packages.All)
	assert.Equal(t, []types.VersionEntry{{Version: "5.17.0", Label: "Zoom - Production"}}, result.Policies.All)
}

func TestVersionsMissingTitle(t *testing.T) {
	store := newStubStore()
	seedPatch(t, store)
	svc := Service{Store: store}

	_, err := svc.Versions(t.Context(), VersionsRequest{Title: "Chrome"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "software title not found: Chrome")

	_, err = svc.Versions(t.Context(), VersionsRequest{Title: " "})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
