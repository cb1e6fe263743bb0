package porter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

// Errors
var (
	// ErrEmptyFile is returned when an import source has no header row.
	ErrEmptyFile = errors.New("porter: import file is empty")

	// ErrUnsafePath is returned when an archive entry would escape its
	// extraction directory.
	ErrUnsafePath = errors.New("porter: archive entry has an unsafe path")
)

// Engine runs imports and exports against a vault.
type Engine struct {
	vault  *vault.Vault
	logger *zap.Logger
}

// New returns an Engine bound to a vault.
func New(v *vault.Vault, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{vault: v, logger: logger}
}

// Result summarizes an import run. Rows that fail to parse or collide with
// existing credentials are skipped with a warning rather than aborting the
// remaining rows.
type Result struct {
	Imported int
	Layout   Layout
	Warnings []string
}
