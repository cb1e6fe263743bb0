package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

var (
	cfgFile string
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "securevault",
	Short: "securevault is a local encrypted password vault",
	Long: `A local, single-user password vault. Credentials and file attachments
are encrypted at rest with AES-256, keyed from your master password.
Supports importing browser CSV exports and full ZIP backups.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			logger = l
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.securevault/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("db", "", "Path to the vault database")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Vault username")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".securevault")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SECUREVAULT")
	viper.AutomaticEnv()
	viper.SetDefault("db", filepath.Join(configDir, "securevault.db"))

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and flags cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func openVault() (*vault.Vault, error) {
	return vault.Open(viper.GetString("db"), logger)
}

// withSession opens the vault, authenticates interactively, and runs fn
// with a live session. The session key is wiped and the vault closed on
// every exit path.
func withSession(fn func(v *vault.Vault, s *vault.Session) error) error {
	v, err := openVault()
	if err != nil {
		return err
	}
	defer v.Close()

	username := viper.GetString("user")
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}

	password, err := promptPassword("Master password: ")
	if err != nil {
		return err
	}

	s, err := v.Login(username, password)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(v, s)
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
