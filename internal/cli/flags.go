package cli

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdmctl/internal/app"
	"mdmctl/internal/types"
)

// queryOptions are the record selection flags shared by every command
// that acts on existing records.
type queryOptions struct {
	Names    []string
	Patterns []string
	IDs      []string
	Where    []string
}

func addQueryFlags(cmd *cobra.Command, opts *queryOptions) {
	cmd.Flags().StringArrayVarP(&opts.Names, "name", "n", nil, "Exact record name (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Patterns, "regex", "r", nil, "Record name regular expression (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.IDs, "id", "i", nil, "Record id (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "Keep records where path=value (repeatable)")
}

func (o queryOptions) query(recordType types.RecordType) app.RecordQuery {
	return app.RecordQuery{
		Type:     recordType,
		Names:    o.Names,
		Patterns: o.Patterns,
		IDs:      o.IDs,
		Where:    o.Where,
	}
}

func parseRecordTypeArg(value string) (types.RecordType, error) {
	recordType, ok := types.ParseRecordType(value)
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown record type " + value + " (expected one of: " + strings.Join(recordTypeNames(), ", ") + ")")
	}
	return recordType, nil
}

func recordTypeCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return recordTypeNames(), cobra.ShellCompDirectiveNoFileComp
}

func recordTypeNames() []string {
	names := make([]string, 0, len(types.RecordTypes))
	for _, recordType := range types.RecordTypes {
		names = append(names, string(recordType))
	}
	return names
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
