package cli

import (
	"context"

	"github.com/spf13/cobra"

	"mdmctl/internal/app"
)

type uploadOptions struct {
	Query queryOptions
	File  string
}

func newUploadCommand() *cobra.Command {
	opts := uploadOptions{}
	cmd := &cobra.Command{
		Use:               "upload TYPE",
		Short:             "Upload a file to each matching record",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: recordTypeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), cmd, args[0], opts)
		},
	}
	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "File to upload")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runUpload(ctx context.Context, cmd *cobra.Command, typeArg string, opts uploadOptions) error {
	recordType, err := parseRecordTypeArg(typeArg)
	if err != nil {
		return err
	}
	service, err := newAppService(cmd)
	if err != nil {
		return err
	}
	result, err := service.Upload(ctx, app.UploadRequest{
		Query: opts.Query.query(recordType),
		Path:  opts.File,
	})
	if renderErr := renderRefs(cmd.OutOrStdout(), "uploaded", result.Uploaded); renderErr != nil && err == nil {
		err = renderErr
	}
	return err
}
