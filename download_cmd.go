package main

import (
	"github.com/spf13/cobra"

	"github.com/tonimelisma/gofile-go/internal/gofile"
	"github.com/tonimelisma/gofile-go/internal/transfer"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url-or-id>",
		Short: "Download a file or folder from Gofile",
		Long: `Download the file or folder behind a Gofile share URL or bare content
ID. Folder contents are downloaded one level deep; nested subfolders
are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runDownload,
	}

	cmd.Flags().StringP("output", "o", ".", "output directory for downloads")

	return cmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, logger, err := loadClient()
	if err != nil {
		return err
	}

	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	contentID := gofile.ExtractID(args[0])

	node, err := client.Resolve(ctx, contentID)
	if err != nil {
		// Resolution failure becomes a single error record so JSON
		// consumers always see the batch result shape.
		results := []transfer.Result{{
			File:      contentID,
			Status:    transfer.StatusError,
			Message:   err.Error(),
			ErrorKind: gofile.Kind(err),
		}}

		return outputResults(results, true)
	}

	mgr := transfer.NewManager(client, logger, progressFactory("Downloading"))

	return outputResults(mgr.DownloadAll(ctx, node, outputDir), true)
}
