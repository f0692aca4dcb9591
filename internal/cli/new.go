package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mdmctl/internal/app"
)

type newOptions struct {
	File string
	Name string
	Sets []string
}

func newNewCommand() *cobra.Command {
	opts := newOptions{}
	cmd := &cobra.Command{
		Use:               "new TYPE",
		Short:             "Create a record from a payload file and/or a name",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: recordTypeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "JSON or YAML payload file (- reads stdin)")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Record name")
	cmd.Flags().StringArrayVarP(&opts.Sets, "set", "s", nil, "Set path=value in the payload (repeatable)")
	return cmd
}

func runNew(ctx context.Context, cmd *cobra.Command, typeArg string, opts newOptions) error {
	recordType, err := parseRecordTypeArg(typeArg)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.Create(ctx, app.CreateRequest{
		Type:        recordType,
		Name:        opts.Name,
		PayloadPath: opts.File,
		Sets:        opts.Sets,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.ID)
	return err
}
