package main

import (
	"github.com/spf13/cobra"

	"github.com/tonimelisma/gofile-go/internal/transfer"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to Gofile",
		Long: `Upload one or more files to Gofile. Without a token each file lands
in its own fresh guest folder; use --single-folder to keep a batch
together, or --folder-id to target an existing folder.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().StringP("folder-id", "f", "", "ID of an existing Gofile folder to upload into")
	cmd.Flags().BoolP("single-folder", "s", false, "upload all files into the same folder")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, logger, err := loadClient()
	if err != nil {
		return err
	}

	folderID, err := cmd.Flags().GetString("folder-id")
	if err != nil {
		return err
	}

	singleFolder, err := cmd.Flags().GetBool("single-folder")
	if err != nil {
		return err
	}

	mgr := transfer.NewManager(client, logger, progressFactory("Uploading"))

	results := mgr.UploadAll(ctx, args, transfer.UploadOptions{
		FolderID:     folderID,
		SingleFolder: singleFolder,
	})

	return outputResults(results, false)
}
