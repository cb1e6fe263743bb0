package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/health"
)

func init() {
	rootCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create a new vault user",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var username string
		var err error
		if len(args) == 1 {
			username = args[0]
		} else if username = viper.GetString("user"); username == "" {
			username, err = promptLine("Username: ")
			if err != nil {
				return err
			}
		}

		password1, err := promptPassword("Master password: ")
		if err != nil {
			return err
		}
		password2, err := promptPassword("Confirm master password: ")
		if err != nil {
			return err
		}
		if password1 != password2 {
			return fmt.Errorf("passwords do not match")
		}

		if health.Classify(password1) == health.Weak {
			fmt.Println("Warning: this master password is weak.")
			for _, s := range health.Suggestions(password1) {
				fmt.Println("  -", s)
			}
		}

		v, err := openVault()
		if err != nil {
			return err
		}
		defer v.Close()

		if err := v.CreateUser(username, password1); err != nil {
			return err
		}
		fmt.Printf("User %s registered. Log in with any command to start adding credentials.\n", username)
		return nil
	},
}
