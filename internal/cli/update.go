package cli

import (
	"context"

	"github.com/spf13/cobra"

	"mdmctl/internal/app"
)

type updateOptions struct {
	Query queryOptions
	File  string
	Sets  []string
}

func newUpdateCommand() *cobra.Command {
	opts := updateOptions{}
	cmd := &cobra.Command{
		Use:               "update TYPE",
		Short:             "Change values in matching records",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: recordTypeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), cmd, args[0], opts)
		},
	}
	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Replace the body with a JSON or YAML payload file")
	cmd.Flags().StringArrayVarP(&opts.Sets, "set", "s", nil, "Set path=value (repeatable)")
	return cmd
}

func runUpdate(ctx context.Context, cmd *cobra.Command, typeArg string, opts updateOptions) error {
	recordType, err := parseRecordTypeArg(typeArg)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.Update(ctx, app.UpdateRequest{
		Query:       opts.Query.query(recordType),
		PayloadPath: opts.File,
		Sets:        opts.Sets,
	})
	if err != nil {
		return err
	}
	return renderRefs(cmd.OutOrStdout(), "updated", result.Updated)
}
