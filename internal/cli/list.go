package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdmctl/internal/app"
)

type listOptions struct {
	Query         queryOptions
	Paths         []string
	Long          bool
	JSON          bool
	Quiet         bool
	PatchVersions bool
	PatchPolicies bool
	Versions      []string
	SortVersions  bool
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:               "list TYPE",
		Short:             "List records of a type, optionally with values at paths",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: recordTypeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, args[0], opts)
		},
	}
	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().StringArrayVarP(&opts.Paths, "path", "p", nil, "Print the value at a path such as general.id (repeatable)")
	cmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "Print record ids next to names")
	cmd.Flags().BoolVarP(&opts.JSON, "json", "j", false, "Print JSON")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Omit record name headers")
	cmd.Flags().BoolVar(&opts.PatchVersions, "patch-versions", false, "Show the package for each software title version")
	cmd.Flags().BoolVar(&opts.PatchPolicies, "patch-policies", false, "Show the version each patch policy targets")
	cmd.Flags().StringArrayVar(&opts.Versions, "version", nil, "Only show these versions (repeatable)")
	cmd.Flags().BoolVar(&opts.SortVersions, "sort-versions", false, "Sort versions naturally instead of server order")
	cmd.MarkFlagsMutuallyExclusive("long", "json")
	_ = viper.BindPFlag("list.json", cmd.Flags().Lookup("json"))
	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, typeArg string, opts listOptions) error {
	recordType, err := parseRecordTypeArg(typeArg)
	if err != nil {
		return err
	}
	// An explicit --long wins over a configured json default.
	if !flagChanged(cmd, "long") {
		opts.JSON = resolveBool(cmd, opts.JSON, "list.json", "json")
	}
	mode, err := outputMode(opts.Long, opts.JSON)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.List(ctx, app.ListRequest{
		Query:         opts.Query.query(recordType),
		Paths:         opts.Paths,
		PatchVersions: opts.PatchVersions,
		PatchPolicies: opts.PatchPolicies,
		Versions:      opts.Versions,
		SortVersions:  opts.SortVersions,
	})
	if err != nil {
		return err
	}
	return renderList(cmd.OutOrStdout(), result, mode, opts.Quiet)
}
