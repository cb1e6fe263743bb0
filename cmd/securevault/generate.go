package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
)

const (
	charsetLowercase = "abcdefghijklmnopqrstuvwxyz"
	charsetUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetDigits    = "0123456789"
	charsetSymbols   = "!@#$%^&*()-_=+[]{};:,.<>?"

	minGenerateLength     = 8
	maxGenerateLength     = 256
	defaultGenerateLength = 20
)

var (
	generateLength    int
	generateNoSymbols bool
	generateNoDigits  bool
	generateExclude   string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&generateLength, "length", "l", defaultGenerateLength, "Password length (8-256)")
	generateCmd.Flags().BoolVar(&generateNoSymbols, "no-symbols", false, "Exclude symbols")
	generateCmd.Flags().BoolVar(&generateNoDigits, "no-digits", false, "Exclude digits")
	generateCmd.Flags().StringVar(&generateExclude, "exclude", "", "Characters to exclude (e.g. \"0O1lI\")")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a secure random password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateLength < minGenerateLength || generateLength > maxGenerateLength {
			return fmt.Errorf("length must be between %d and %d", minGenerateLength, maxGenerateLength)
		}

		charset := charsetLowercase + charsetUppercase
		if !generateNoDigits {
			charset += charsetDigits
		}
		if !generateNoSymbols {
			charset += charsetSymbols
		}
		for _, r := range generateExclude {
			charset = strings.ReplaceAll(charset, string(r), "")
		}
		if len(charset) == 0 {
			return fmt.Errorf("exclusions left no characters to choose from")
		}

		password, err := randomString(charset, generateLength)
		if err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}
		fmt.Println(password)
		return nil
	},
}

func randomString(charset string, length int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String(), nil
}
