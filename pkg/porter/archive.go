package porter

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/vault"
)

// ExportArchive writes a full backup to path: a credentials.csv at the
// archive root plus each credential's attachments decrypted into
// attachments/cred_<id>/<filename>. Everything is staged in a temporary
// directory that is removed on every exit path. The archive itself is not
// encrypted; its confidentiality is down to where the file is stored.
func (e *Engine) ExportArchive(s *vault.Session, path string, creds []*vault.Credential) error {
	staging, err := os.MkdirTemp("", "securevault-export-*")
	if err != nil {
		return fmt.Errorf("porter: failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := e.ExportCSV(filepath.Join(staging, "credentials.csv"), creds); err != nil {
		return err
	}

	for _, c := range creds {
		atts, err := e.vault.ListAttachments(c.ID)
		if err != nil {
			return err
		}
		if len(atts) == 0 {
			continue
		}

		credDir := filepath.Join(staging, "attachments", fmt.Sprintf("cred_%d", c.ID))
		if err := os.MkdirAll(credDir, 0700); err != nil {
			return fmt.Errorf("porter: failed to create attachment directory: %w", err)
		}
		for _, a := range atts {
			filename, data, err := e.vault.DownloadAttachment(s, a.ID)
			if err != nil {
				return err
			}
			// Attachment filenames come from user uploads; keep only the
			// base name so they cannot write outside the staging tree.
			target := filepath.Join(credDir, filepath.Base(filename))
			if err := os.WriteFile(target, data, 0600); err != nil {
				return fmt.Errorf("porter: failed to write attachment: %w", err)
			}
		}
	}

	return zipDirectory(staging, path)
}

// ImportArchive extracts an archive into a staging directory, imports
// credentials.csv when present, and surveys the attachments tree. Staging
// cleanup happens on every exit path.
//
// Attachment files cannot yet be re-linked to the freshly imported
// credential ids, since cred_<id> directories refer to ids from the
// exporting vault. They are counted and reported instead of imported.
func (e *Engine) ImportArchive(s *vault.Session, path string) (*Result, error) {
	staging, err := os.MkdirTemp("", "securevault-import-*")
	if err != nil {
		return nil, fmt.Errorf("porter: failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := unzipArchive(path, staging); err != nil {
		return nil, err
	}

	result := &Result{}
	csvPath := filepath.Join(staging, "credentials.csv")
	if _, err := os.Stat(csvPath); err == nil {
		result, err = e.ImportCSV(s, csvPath)
		if err != nil {
			return nil, err
		}
	}

	attachmentsDir := filepath.Join(staging, "attachments")
	if info, err := os.Stat(attachmentsDir); err == nil && info.IsDir() {
		skipped := 0
		err := filepath.WalkDir(attachmentsDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				skipped++
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("porter: failed to scan attachments: %w", err)
		}
		if skipped > 0 {
			e.logger.Warn("archive attachments cannot be re-linked to imported credentials",
				zap.Int("files", skipped))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%d attachment file(s) in archive were not imported", skipped))
		}
	}

	return result, nil
}

func zipDirectory(sourceDir, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("porter: failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(sourceDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, p)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("porter: failed to build archive: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("porter: failed to finalize archive: %w", err)
	}
	return out.Close()
}

func unzipArchive(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		if r != nil {
			r.Close()
		}
		if errors.Is(err, zip.ErrInsecurePath) {
			return fmt.Errorf("%w: %v", ErrUnsafePath, err)
		}
		return fmt.Errorf("porter: failed to open archive: %w", err)
	}
	defer r.Close()

	for _, entry := range r.File {
		target, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0700); err != nil {
				return fmt.Errorf("porter: failed to extract archive: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			return fmt.Errorf("porter: failed to extract archive: %w", err)
		}
		if err := extractFile(entry, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("porter: failed to read archive entry: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("porter: failed to extract archive entry: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("porter: failed to extract archive entry: %w", err)
	}
	return dst.Close()
}

// safeJoin resolves an archive entry name under dir, rejecting entries
// that would escape it.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target != dir && !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}
