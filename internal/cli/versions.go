package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdmctl/internal/app"
)

type versionsOptions struct {
	Versions     []string
	SortVersions bool
	JSON         bool
}

func newVersionsCommand() *cobra.Command {
	opts := versionsOptions{}
	cmd := &cobra.Command{
		Use:   "versions TITLE",
		Short: "Show packages and patch policies for each version of a software title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.Versions, "version", nil, "Only show these versions (repeatable)")
	cmd.Flags().BoolVar(&opts.SortVersions, "sort-versions", false, "Sort versions naturally instead of server order")
	cmd.Flags().BoolVarP(&opts.JSON, "json", "j", false, "Print JSON")
	_ = viper.BindPFlag("versions.json", cmd.Flags().Lookup("json"))
	return cmd
}

func runVersions(ctx context.Context, cmd *cobra.Command, title string, opts versionsOptions) error {
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.Versions(ctx, app.VersionsRequest{
		Title:        title,
		Versions:     opts.Versions,
		SortVersions: opts.SortVersions,
	})
	if err != nil {
		return err
	}
	return renderVersions(cmd.OutOrStdout(), result, resolveBool(cmd, opts.JSON, "versions.json", "json"))
}
