package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/gofile-go/internal/gofile"
)

func newMkdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder under an existing parent folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runMkdir,
	}

	cmd.Flags().String("parent", "", "parent folder ID")

	_ = cmd.MarkFlagRequired("parent")

	return cmd
}

// mkdirJSONOutput is the JSON output schema for the mkdir command.
type mkdirJSONOutput struct {
	Created string `json:"created"`
	ID      string `json:"id"`
	Code    string `json:"code,omitempty"`
}

func runMkdir(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, logger, err := loadClient()
	if err != nil {
		return err
	}

	parentID, err := cmd.Flags().GetString("parent")
	if err != nil {
		return err
	}

	folder, err := client.CreateFolder(ctx, parentID, args[0])
	if err != nil {
		return err
	}

	logger.Debug("mkdir complete", "folder_id", folder.ID)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(mkdirJSONOutput{Created: folder.Name, ID: folder.ID, Code: folder.Code})
	}

	statusf("Created %s (%s)\n", folder.Name, folder.ID)

	return nil
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <url-or-id>...",
		Short: "Delete files or folders by content ID or share URL",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRm,
	}
}

// rmJSONOutput is the JSON output schema for the rm command.
type rmJSONOutput struct {
	Deleted []string `json:"deleted"`
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, logger, err := loadClient()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(args))
	for _, arg := range args {
		ids = append(ids, gofile.ExtractID(arg))
	}

	if err := client.DeleteContents(ctx, ids); err != nil {
		return err
	}

	logger.Debug("delete complete", "count", len(ids))

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(rmJSONOutput{Deleted: ids})
	}

	statusf("Deleted %d item(s)\n", len(ids))

	return nil
}

func newAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Create a guest account and print its token",
		Long: `Create a throwaway guest account on Gofile and print its token.
Save the token (GOFILE_TOKEN or the config file) to keep uploading
into the same account.`,
		Args: cobra.NoArgs,
		RunE: runAccount,
	}
}

// accountJSONOutput is the JSON output schema for the account command.
type accountJSONOutput struct {
	Token string `json:"token"`
}

func runAccount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, _, err := loadClient()
	if err != nil {
		return err
	}

	token, err := client.CreateGuestAccount(ctx)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(accountJSONOutput{Token: token})
	}

	statusf("Guest account created. Token:\n")
	cmd.Println(token)

	return nil
}
