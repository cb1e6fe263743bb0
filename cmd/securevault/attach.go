package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

var attachOutput string

func init() {
	rootCmd.AddCommand(attachCmd)
	attachCmd.AddCommand(attachAddCmd)
	attachCmd.AddCommand(attachListCmd)
	attachCmd.AddCommand(attachGetCmd)
	attachCmd.AddCommand(attachDeleteCmd)

	attachGetCmd.Flags().StringVarP(&attachOutput, "output", "o", "", "Output path (default: original filename)")
}

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage encrypted file attachments",
}

var attachAddCmd = &cobra.Command{
	Use:   "add [credential-id] [file]",
	Short: "Attach a file to a credential (10 MiB limit)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		credID, err := parseID(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			id, err := v.AddAttachment(s, credID, filepath.Base(args[1]), data)
			if err != nil {
				return err
			}
			fmt.Printf("Attached %s as attachment %d (%d bytes)\n", filepath.Base(args[1]), id, len(data))
			return nil
		})
	},
}

var attachListCmd = &cobra.Command{
	Use:   "list [credential-id]",
	Short: "List a credential's attachments, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		credID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			atts, err := v.ListAttachments(credID)
			if err != nil {
				return err
			}
			if len(atts) == 0 {
				fmt.Println("No attachments.")
				return nil
			}
			for _, a := range atts {
				fmt.Printf("%4d  %-40s %8d bytes  %s\n",
					a.ID, a.Filename, a.Size, a.UploadedAt.Local().Format("2006-01-02 15:04"))
			}
			total, err := v.TotalAttachmentSize(credID)
			if err != nil {
				return err
			}
			fmt.Printf("Total: %d bytes\n", total)
			return nil
		})
	},
}

var attachGetCmd = &cobra.Command{
	Use:   "get [attachment-id]",
	Short: "Download and decrypt an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			filename, data, err := v.DownloadAttachment(s, id)
			if err != nil {
				return err
			}
			out := attachOutput
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
			return nil
		})
	},
}

var attachDeleteCmd = &cobra.Command{
	Use:   "delete [attachment-id]",
	Short: "Delete an attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			return v.DeleteAttachment(id)
		})
	},
}
