package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

var categoryColor string

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)

	categoryAddCmd.Flags().StringVar(&categoryColor, "color", "", "Display color as #rrggbb")
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage credential categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List default and custom categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			cats, err := v.Categories(s.UserID)
			if err != nil {
				return err
			}
			for _, c := range cats {
				kind := "custom"
				if vault.IsDefaultCategory(c.Name) {
					kind = "default"
				}
				fmt.Printf("%-20s %-8s %s\n", c.Name, kind, color.CyanString(c.Color))
			}
			return nil
		})
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a custom category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			if err := v.AddCategory(s.UserID, args[0], categoryColor); err != nil {
				return err
			}
			fmt.Printf("Added category %s\n", args[0])
			return nil
		})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a custom category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			return v.DeleteCategory(s.UserID, args[0])
		})
	},
}
