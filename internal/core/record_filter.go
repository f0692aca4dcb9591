package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mdmctl/internal/types"
)

// Criteria selects records by exact name, name pattern or id. A record
// matching any one criterion is selected.
type Criteria struct {
	names    map[string]struct{}
	patterns []*regexp.Regexp
	ids      map[string]struct{}
}

func NewCriteria(names []string, patterns []string, ids []string) (Criteria, error) {
	criteria := Criteria{
		names: map[string]struct{}{},
		ids:   map[string]struct{}{},
	}
	for _, name := range names {
		criteria.names[name] = struct{}{}
	}
	for _, pattern := range patterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return Criteria{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid name pattern: %q", pattern)).
				WithCause(err)
		}
		criteria.patterns = append(criteria.patterns, compiled)
	}
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		criteria.ids[trimmed] = struct{}{}
	}
	return criteria, nil
}

func (c Criteria) Empty() bool {
	return len(c.names) == 0 && len(c.patterns) == 0 && len(c.ids) == 0
}

func (c Criteria) Matches(ref types.RecordRef) bool {
	if _, ok := c.names[ref.Name]; ok {
		return true
	}
	if _, ok := c.ids[ref.ID]; ok {
		return true
	}
	for _, pattern := range c.patterns {
		if pattern.MatchString(ref.Name) {
			return true
		}
	}
	return false
}

// Select returns the refs matching criteria, each once, sorted by name
// and then id. Empty criteria select everything.
func Select(refs []types.RecordRef, criteria Criteria) []types.RecordRef {
	seen := map[types.RecordRef]struct{}{}
	selected := make([]types.RecordRef, 0, len(refs))
	for _, ref := range refs {
		if !criteria.Empty() && !criteria.Matches(ref) {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		selected = append(selected, ref)
	}
	SortRefs(selected)
	return selected
}

func SortRefs(refs []types.RecordRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return compareRefs(refs[i], refs[j]) < 0
	})
}

func compareRefs(a types.RecordRef, b types.RecordRef) int {
	if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
		return cmp
	}
	return compareIDs(a.ID, b.ID)
}

func compareIDs(a string, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// PathFilter reports whether detail satisfies every equality. A path that
// is missing or ends at a structure is an error, not a mismatch.
func PathFilter(detail types.RecordDetail, equalities []PathEquality) (bool, error) {
	keep := true
	for _, equality := range equalities {
		result, err := Resolve(detail, equality.Path)
		if err != nil {
			return false, err
		}
		if !result.IsScalar() {
			return false, &AmbiguousPathError{Path: equality.Path, Value: result.Value}
		}
		if result.Text() != equality.Expected {
			keep = false
		}
	}
	return keep, nil
}
