package core

import (
	"sort"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"

	"mdmctl/internal/types"
)

// versionOrder memoizes parsed version labels while sorting. Labels are
// tried as PEP 440 first, then as Debian versions; anything else falls
// back to byte order.
type versionOrder struct {
	pep map[string]*pep440.Version
	deb map[string]*debversion.Version
}

func newVersionOrder() *versionOrder {
	return &versionOrder{
		pep: map[string]*pep440.Version{},
		deb: map[string]*debversion.Version{},
	}
}

func (o *versionOrder) pepVersion(value string) *pep440.Version {
	if parsed, ok := o.pep[value]; ok {
		return parsed
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		o.pep[value] = nil
		return nil
	}
	o.pep[value] = &parsed
	return &parsed
}

func (o *versionOrder) debVersion(value string) *debversion.Version {
	if parsed, ok := o.deb[value]; ok {
		return parsed
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		o.deb[value] = nil
		return nil
	}
	o.deb[value] = &parsed
	return &parsed
}

func (o *versionOrder) compare(a string, b string) int {
	if pa, pb := o.pepVersion(a), o.pepVersion(b); pa != nil && pb != nil {
		return pa.Compare(*pb)
	}
	if da, db := o.debVersion(a), o.debVersion(b); da != nil && db != nil {
		return da.Compare(*db)
	}
	return strings.Compare(a, b)
}

// SortVersions returns entries ordered from oldest to newest version.
func SortVersions(entries []types.VersionEntry) []types.VersionEntry {
	order := newVersionOrder()
	sorted := make([]types.VersionEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return order.compare(sorted[i].Version, sorted[j].Version) < 0
	})
	return sorted
}
