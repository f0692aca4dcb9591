package cli

import (
	"context"

	"github.com/spf13/cobra"

	"mdmctl/internal/app"
)

type deleteOptions struct {
	Query queryOptions
	Force bool
}

func newDeleteCommand() *cobra.Command {
	opts := deleteOptions{}
	cmd := &cobra.Command{
		Use:               "delete TYPE",
		Short:             "Delete matching records, confirming each one",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: recordTypeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), cmd, args[0], opts)
		},
	}
	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Delete without asking for confirmation")
	return cmd
}

func runDelete(ctx context.Context, cmd *cobra.Command, typeArg string, opts deleteOptions) error {
	recordType, err := parseRecordTypeArg(typeArg)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.Delete(ctx, app.DeleteRequest{
		Query: opts.Query.query(recordType),
		Force: opts.Force,
	})
	if renderErr := renderRefs(cmd.OutOrStdout(), "deleted", result.Deleted); renderErr != nil && err == nil {
		err = renderErr
	}
	return err
}
