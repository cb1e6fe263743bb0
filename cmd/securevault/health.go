package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/health"
	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

var healthShowAll bool

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&healthShowAll, "attention", false, "List credentials that need attention")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report password health for the whole vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(v *vault.Vault, s *vault.Session) error {
			creds, err := v.ListCredentials(s, s.UserID)
			if err != nil {
				return err
			}

			now := time.Now()
			stats := health.Analyze(creds, now)

			scoreColor := color.New(color.FgGreen, color.Bold)
			switch {
			case stats.Score < 40:
				scoreColor = color.New(color.FgRed, color.Bold)
			case stats.Score < 70:
				scoreColor = color.New(color.FgYellow, color.Bold)
			}
			scoreColor.Printf("Security score: %.0f / 100\n", stats.Score)

			fmt.Printf("Credentials:   %d\n", stats.Total)
			fmt.Printf("Strength:      %s / %s / %s\n",
				color.GreenString("%d strong", stats.Strong),
				color.YellowString("%d medium", stats.Medium),
				color.RedString("%d weak", stats.Weak))
			fmt.Printf("Reused:        %d\n", stats.Reused)
			fmt.Printf("Expired:       %d\n", stats.Expired)
			fmt.Printf("Expiring soon: %d\n", stats.ExpiringSoon)
			fmt.Printf("No expiry set: %d\n", stats.NoExpiry)

			if healthShowAll {
				flagged := health.NeedsAttention(creds, now)
				if len(flagged) == 0 {
					color.Green("Nothing needs attention.")
					return nil
				}
				fmt.Println()
				fmt.Println("Needs attention:")
				for _, c := range flagged {
					fmt.Printf("  %4d  %-30s %s\n", c.ID, c.Title, c.Username)
				}
			}
			return nil
		})
	},
}
