package core

import (
	"encoding/json"
	"fmt"
)

// PathNotFoundError reports the first key of a path that does not exist.
type PathNotFoundError struct {
	Key  string
	Path []string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path key not found: %s (in %s)", e.Key, JoinPath(e.Path))
}

// AmbiguousPathError reports a path that ends at a mapping or sequence
// where a scalar was required.
type AmbiguousPathError struct {
	Path  []string
	Value any
}

func (e *AmbiguousPathError) Error() string {
	raw, err := json.Marshal(e.Value)
	if err != nil {
		raw = []byte(fmt.Sprint(e.Value))
	}
	return fmt.Sprintf("path %s is not a single value: %s", JoinPath(e.Path), raw)
}

type TitleNotFoundError struct {
	Name string
}

func (e *TitleNotFoundError) Error() string {
	return fmt.Sprintf("software title not found: %s", e.Name)
}
