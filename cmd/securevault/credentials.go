package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/health"
	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

// Flags for add and update
var (
	credUsername string
	credSecret   string
	credURL      string
	credCategory string
	credNotes    string
	credExpiry   string
	credFavorite bool

	listShowSecrets bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(favoriteCmd)

	for _, cmd := range []*cobra.Command{addCmd, updateCmd} {
		cmd.Flags().StringVar(&credUsername, "username", "", "Login username for the credential")
		cmd.Flags().StringVar(&credSecret, "secret", "", "Password (prompted when omitted)")
		cmd.Flags().StringVar(&credURL, "url", "", "Website URL")
		cmd.Flags().StringVar(&credCategory, "category", "", "Category name")
		cmd.Flags().StringVar(&credNotes, "notes", "", "Free-form notes")
		cmd.Flags().StringVar(&credExpiry, "expires", "", "Expiry date (YYYY-MM-DD)")
		cmd.Flags().BoolVar(&credFavorite, "favorite", false, "Mark as favorite")
	}
	listCmd.Flags().BoolVar(&listShowSecrets, "show-secrets", false, "Print decrypted secrets")
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			secret := credSecret
			var err error
			if secret == "" {
				secret, err = promptPassword("Secret: ")
				if err != nil {
					return err
				}
			}

			id, err := v.CreateCredential(s, &vault.Credential{
				UserID:     s.UserID,
				Title:      args[0],
				Username:   credUsername,
				Secret:     secret,
				Notes:      credNotes,
				IsFavorite: credFavorite,
				Category:   credCategory,
				WebsiteURL: credURL,
				ExpiryDate: credExpiry,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added credential %d: %s\n", id, args[0])

			if health.Classify(secret) == health.Weak {
				color.Yellow("This password is weak. Consider:")
				for _, sug := range health.Suggestions(secret) {
					fmt.Println("  -", sug)
				}
			}
			return nil
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a credential with its decrypted secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			c, err := v.GetCredential(s, id)
			if err != nil {
				return err
			}

			fmt.Printf("Title:    %s\n", c.Title)
			fmt.Printf("Username: %s\n", c.Username)
			if c.SecretOpaque {
				color.Red("Secret:   <undecryptable, raw value follows>")
			}
			fmt.Printf("Secret:   %s\n", c.Secret)
			if c.WebsiteURL != "" {
				fmt.Printf("URL:      %s\n", c.WebsiteURL)
			}
			fmt.Printf("Category: %s\n", c.Category)
			if c.Notes != "" {
				fmt.Printf("Notes:    %s\n", c.Notes)
			}
			if c.ExpiryDate != "" {
				fmt.Printf("Expires:  %s\n", c.ExpiryDate)
			}
			fmt.Printf("Modified: %s\n", c.ModifiedAt.Local().Format("2006-01-02 15:04"))

			if n, err := v.CountAttachments(c.ID); err == nil && n > 0 {
				fmt.Printf("Attachments: %d\n", n)
			}
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials, favorites first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			creds, err := v.ListCredentials(s, s.UserID)
			if err != nil {
				return err
			}
			if len(creds) == 0 {
				fmt.Println("No credentials stored.")
				return nil
			}

			for _, c := range creds {
				marker := " "
				if c.IsFavorite {
					marker = "*"
				}
				line := fmt.Sprintf("%s %4d  %-30s %-25s %s", marker, c.ID, c.Title, c.Username, c.Category)
				if listShowSecrets {
					secret := c.Secret
					if c.SecretOpaque {
						secret = "<undecryptable>"
					}
					line += "  " + secret
				}
				fmt.Println(line)
			}
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id] [title]",
	Short: "Update a credential",
	Long: `Update a credential. The new title, username and secret are required;
metadata flags replace the stored values.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			secret := credSecret
			if secret == "" {
				secret, err = promptPassword("Secret: ")
				if err != nil {
					return err
				}
			}

			return v.UpdateCredential(s, &vault.Credential{
				ID:         id,
				Title:      args[1],
				Username:   credUsername,
				Secret:     secret,
				Notes:      credNotes,
				IsFavorite: credFavorite,
				Category:   credCategory,
				WebsiteURL: credURL,
				ExpiryDate: credExpiry,
			})
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a credential and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			if err := v.DeleteCredential(id); err != nil {
				return err
			}
			fmt.Printf("Deleted credential %d\n", id)
			return nil
		})
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite [id]",
	Short: "Toggle a credential's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			return v.ToggleFavorite(id)
		})
	},
}
