package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/porter"
	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import credentials from a CSV export or a backup archive",
	Long: `Import credentials. CSV exports from Chrome, Firefox, Edge, Opera, and
securevault itself are detected from the header row; .zip files are
treated as securevault backup archives.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			e := porter.New(v, logger)

			var res *porter.Result
			var err error
			if strings.HasSuffix(strings.ToLower(args[0]), ".zip") {
				res, err = e.ImportArchive(s, args[0])
			} else {
				res, err = e.ImportCSV(s, args[0])
				if err == nil {
					fmt.Printf("Detected %s layout\n", res.Layout)
				}
			}
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d credential(s)\n", res.Imported)
			for _, w := range res.Warnings {
				fmt.Println("Warning:", w)
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export credentials to CSV or a backup archive",
	Long: `Export all credentials. A .zip target produces a full backup archive
with decrypted attachments; anything else gets plaintext CSV.

The output contains decrypted secrets. Store it somewhere safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			creds, err := v.ListCredentials(s, s.UserID)
			if err != nil {
				return err
			}

			e := porter.New(v, logger)
			if strings.HasSuffix(strings.ToLower(args[0]), ".zip") {
				if err := e.ExportArchive(s, args[0], creds); err != nil {
					return err
				}
			} else {
				if err := e.ExportCSV(args[0], creds); err != nil {
					return err
				}
			}
			fmt.Printf("Exported %d credential(s) to %s\n", len(creds), args[0])
			return nil
		})
	},
}
