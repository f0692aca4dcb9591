package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"mdmctl/internal/app"
	"mdmctl/internal/core"
	"mdmctl/internal/types"
)

const indent = "  "

func outputMode(long bool, jsonOutput bool) (types.OutputMode, error) {
	switch {
	case long && jsonOutput:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--long and --json cannot be used together")
	case jsonOutput:
		return types.OutputModeJSON, nil
	case long:
		return types.OutputModeLong, nil
	default:
		return types.OutputModeText, nil
	}
}

type listingJSON struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Paths    map[string]any       `json:"paths,omitempty"`
	Packages []types.VersionEntry `json:"packages,omitempty"`
	Policies []types.VersionEntry `json:"policies,omitempty"`
}

func renderList(out io.Writer, result app.ListResult, mode types.OutputMode, quiet bool) error {
	if mode == types.OutputModeJSON {
		for _, record := range result.Records {
			entry := listingJSON{ID: record.Ref.ID, Name: record.Ref.Name}
			for _, value := range record.Values {
				if value.Missing {
					warnMissingPath(record.Ref, value.Expr)
					continue
				}
				if entry.Paths == nil {
					entry.Paths = map[string]any{}
				}
				entry.Paths[value.Expr] = value.Result.Value
			}
			if record.Packages != nil {
				entry.Packages = record.Packages.Visible
			}
			if record.Policies != nil {
				entry.Policies = record.Policies.Visible
			}
			if err := writeJSONLine(out, entry); err != nil {
				return err
			}
		}
		return nil
	}

	idWidth := 0
	for _, record := range result.Records {
		idWidth = max(idWidth, len(record.Ref.ID))
	}
	for _, record := range result.Records {
		detailed := len(record.Values) > 0 || record.Packages != nil || record.Policies != nil
		if !detailed || !quiet {
			if err := writeRecordHeader(out, record.Ref, mode, idWidth); err != nil {
				return err
			}
		}
		prefix := indent
		if quiet {
			prefix = ""
		}
		for _, value := range record.Values {
			if value.Missing {
				warnMissingPath(record.Ref, value.Expr)
				continue
			}
			if err := writePathValue(out, prefix, value, quiet); err != nil {
				return err
			}
		}
		if err := writeVersionView(out, prefix, "packages", record.Packages, quiet); err != nil {
			return err
		}
		if err := writeVersionView(out, prefix, "policies", record.Policies, quiet); err != nil {
			return err
		}
	}
	return nil
}

func writeRecordHeader(out io.Writer, ref types.RecordRef, mode types.OutputMode, idWidth int) error {
	if mode == types.OutputModeLong {
		_, err := fmt.Fprintf(out, "%*s  %s\n", idWidth, ref.ID, ref.Name)
		return err
	}
	_, err := fmt.Fprintln(out, ref.Name)
	return err
}

// writePathValue prints a scalar on one line and a substructure as an
// indented YAML block under its path.
func writePathValue(out io.Writer, prefix string, value app.PathValue, quiet bool) error {
	if value.Result.Kind == core.PathScalar {
		if quiet {
			_, err := fmt.Fprintln(out, value.Result.Text())
			return err
		}
		_, err := fmt.Fprintf(out, "%s%s: %s\n", prefix, value.Expr, value.Result.Text())
		return err
	}
	block, err := yamlText(value.Result.Value)
	if err != nil {
		return err
	}
	blockPrefix := prefix
	if !quiet {
		if _, err := fmt.Fprintf(out, "%s%s:\n", prefix, value.Expr); err != nil {
			return err
		}
		blockPrefix = prefix + indent
	}
	return writeIndented(out, blockPrefix, block)
}

func writeVersionView(out io.Writer, prefix string, label string, view *app.VersionView, quiet bool) error {
	if view == nil {
		return nil
	}
	if !quiet {
		if _, err := fmt.Fprintf(out, "%s%s:\n", prefix, label); err != nil {
			return err
		}
	}
	for _, line := range view.Lines() {
		if _, err := fmt.Fprintln(out, prefix+line); err != nil {
			return err
		}
	}
	return nil
}

func renderInfo(out io.Writer, result app.InfoResult, jsonOutput bool, quiet bool) error {
	if jsonOutput {
		for _, record := range result.Records {
			if err := writeJSONLine(out, record.Detail); err != nil {
				return err
			}
		}
		return nil
	}
	for i, record := range result.Records {
		if i > 0 && quiet {
			if _, err := fmt.Fprintln(out, "---"); err != nil {
				return err
			}
		}
		if !quiet {
			if _, err := fmt.Fprintf(out, "# %s (id %s)\n", record.Ref.Name, record.Ref.ID); err != nil {
				return err
			}
		}
		block, err := yamlText(record.Detail)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, block); err != nil {
			return err
		}
	}
	return nil
}

func renderVersions(out io.Writer, result app.VersionsResult, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, struct {
			ID       string               `json:"id"`
			Name     string               `json:"name"`
			Packages []types.VersionEntry `json:"packages"`
			Policies []types.VersionEntry `json:"policies"`
		}{
			ID:       result.Title.ID,
			Name:     result.Title.Name,
			Packages: result.Packages.Visible,
			Policies: result.Policies.Visible,
		})
	}
	if _, err := fmt.Fprintf(out, "%s (id %s)\n", result.Title.Name, result.Title.ID); err != nil {
		return err
	}
	if err := writeVersionView(out, "", "packages", &result.Packages, false); err != nil {
		return err
	}
	return writeVersionView(out, "", "policies", &result.Policies, false)
}

func renderRefs(out io.Writer, verb string, refs []types.RecordRef) error {
	for _, ref := range refs {
		if _, err := fmt.Fprintf(out, "%s %s (id %s)\n", verb, ref.Name, ref.ID); err != nil {
			return err
		}
	}
	return nil
}

func warnMissingPath(ref types.RecordRef, expr string) {
	log.Warn().
		Str("record", ref.Name).
		Str("id", ref.ID).
		Str("path", expr).
		Msg("path not found")
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", indent)
	return encodeJSON(encoder, value)
}

// writeJSONLine emits value as one compact line so record streams can be
// consumed line by line.
func writeJSONLine(out io.Writer, value any) error {
	return encodeJSON(json.NewEncoder(out), value)
}

func encodeJSON(encoder *json.Encoder, value any) error {
	if err := encoder.Encode(value); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode json output").
			WithCause(err)
	}
	return nil
}

func yamlText(value any) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(len(indent))
	if err := encoder.Encode(yamlValue(value)); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render yaml output").
			WithCause(err)
	}
	if err := encoder.Close(); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render yaml output").
			WithCause(err)
	}
	return buf.String(), nil
}

// yamlValue turns json.Number leaves into plain YAML scalars so numbers
// keep their textual form without being quoted.
func yamlValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = yamlValue(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = yamlValue(child)
		}
		return out
	case json.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: typed.String()}
	default:
		return value
	}
}

func writeIndented(out io.Writer, prefix string, block string) error {
	for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
		if _, err := fmt.Fprintln(out, prefix+line); err != nil {
			return err
		}
	}
	return nil
}
