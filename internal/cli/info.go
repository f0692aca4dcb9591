package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdmctl/internal/app"
)

type infoOptions struct {
	Query queryOptions
	JSON  bool
	Quiet bool
}

func newInfoCommand() *cobra.Command {
	opts := infoOptions{}
	cmd := &cobra.Command{
		Use:               "info TYPE",
		Short:             "Print the full body of matching records",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: recordTypeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), cmd, args[0], opts)
		},
	}
	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().BoolVarP(&opts.JSON, "json", "j", false, "Print JSON instead of YAML")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Omit record name headers")
	_ = viper.BindPFlag("info.json", cmd.Flags().Lookup("json"))
	return cmd
}

func runInfo(ctx context.Context, cmd *cobra.Command, typeArg string, opts infoOptions) error {
	recordType, err := parseRecordTypeArg(typeArg)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.Info(ctx, app.InfoRequest{Query: opts.Query.query(recordType)})
	if err != nil {
		return err
	}
	return renderInfo(cmd.OutOrStdout(), result, resolveBool(cmd, opts.JSON, "info.json", "json"), opts.Quiet)
}
