package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mdmctl/internal/types"
)

type PathKind int

const (
	PathScalar PathKind = iota
	PathAmbiguous
)

// PathResult is what a path resolves to. A scalar result carries the
// leaf value; an ambiguous one carries the mapping or sequence the path
// stopped at, which must never be compared as text.
type PathResult struct {
	Path  []string
	Kind  PathKind
	Value any
}

func (r PathResult) IsScalar() bool {
	return r.Kind == PathScalar
}

// Text returns the textual form of a scalar result. It is empty for
// ambiguous results.
func (r PathResult) Text() string {
	if r.Kind != PathScalar {
		return ""
	}
	return ScalarText(r.Value)
}

// PathEquality is a `path=expected` test evaluated against a record.
type PathEquality struct {
	Path     []string
	Expected string
}

func (e PathEquality) String() string {
	return JoinPath(e.Path) + "=" + e.Expected
}

// ParsePath splits a path expression on dots and commas.
func ParsePath(expr string) []string {
	fields := strings.FieldsFunc(expr, func(r rune) bool {
		return r == '.' || r == ','
	})
	path := make([]string, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field)
		if key == "" {
			continue
		}
		path = append(path, key)
	}
	return path
}

func ParsePaths(exprs []string) ([][]string, error) {
	paths := make([][]string, 0, len(exprs))
	for _, expr := range exprs {
		path := ParsePath(expr)
		if len(path) == 0 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid path expression: %q", expr))
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ParseEquality splits `path=expected` at the first '='. The expected
// side may itself contain '=' and dots.
func ParseEquality(expr string) (PathEquality, error) {
	idx := strings.Index(expr, "=")
	if idx < 0 {
		return PathEquality{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("path equality must be path=value: %q", expr))
	}
	path := ParsePath(expr[:idx])
	if len(path) == 0 {
		return PathEquality{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("path equality has an empty path: %q", expr))
	}
	return PathEquality{Path: path, Expected: expr[idx+1:]}, nil
}

func ParseEqualities(exprs []string) ([]PathEquality, error) {
	equalities := make([]PathEquality, 0, len(exprs))
	for _, expr := range exprs {
		equality, err := ParseEquality(expr)
		if err != nil {
			return nil, err
		}
		equalities = append(equalities, equality)
	}
	return equalities, nil
}

func JoinPath(path []string) string {
	return strings.Join(path, ".")
}

// Resolve walks path through detail. Mapping keys are looked up by name;
// sequences are indexed by non-negative integer keys.
func Resolve(detail types.RecordDetail, path []string) (PathResult, error) {
	var current any = detail
	for _, key := range path {
		next, ok := child(current, key)
		if !ok {
			return PathResult{}, &PathNotFoundError{Key: key, Path: path}
		}
		current = next
	}
	kind := PathScalar
	if !IsScalar(current) {
		kind = PathAmbiguous
	}
	return PathResult{Path: path, Kind: kind, Value: current}, nil
}

func child(node any, key string) (any, bool) {
	switch typed := node.(type) {
	case map[string]any:
		value, ok := typed[key]
		return value, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}
		return typed[idx], true
	default:
		return nil, false
	}
}

func IsScalar(value any) bool {
	switch value.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}

// ScalarText renders a scalar the way the server sent it. Numbers decoded
// as json.Number keep their original digits.
func ScalarText(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	default:
		return fmt.Sprint(typed)
	}
}

// SetPath stores value at path, creating intermediate mappings for
// missing keys. Existing sequences are indexed, never grown.
func SetPath(detail types.RecordDetail, path []string, value any) error {
	if len(path) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot set an empty path")
	}
	var current any = detail
	for i, key := range path {
		last := i == len(path)-1
		switch typed := current.(type) {
		case map[string]any:
			if last {
				typed[key] = value
				return nil
			}
			next, ok := typed[key]
			if !ok || next == nil {
				next = map[string]any{}
				typed[key] = next
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(typed) {
				return &PathNotFoundError{Key: key, Path: path}
			}
			if last {
				typed[idx] = value
				return nil
			}
			current = typed[idx]
		default:
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("cannot set %s: %s is a value, not a structure", JoinPath(path), JoinPath(path[:i])))
		}
	}
	return nil
}

// ScalarValue is the inverse of ScalarText for values typed on the
// command line: true/false, null and JSON numbers keep their type,
// anything else stays a string.
func ScalarValue(text string) any {
	switch text {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if json.Valid([]byte(text)) {
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			return json.Number(text)
		}
	}
	return text
}
