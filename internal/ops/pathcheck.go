package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/vault/internal/config"
	"github.com/hpungsan/vault/internal/errors"
)

// PathCheckMode says whether a backup path is about to be written or read.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import
	PathCheckWrite                      // export
)

// quarantineMarker joins a vault path and the timestamp of a copy the store
// moved aside because it could not be parsed.
const quarantineMarker = ".corrupt-"

// ValidatePath decides whether a backup file may be used.
//
// The path must name a .jsonl file, have no ".." components, and must not be
// the vault file at vaultPath or one of its quarantined copies. Unless
// allow_unsafe_paths is set it must also sit directly in ~/.vault/exports or
// an allowed_paths directory, reached without a symlinked parent. An export
// target must not be a symlink and an import source must exist. A symlinked
// import source is refused when it is opened.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, vaultPath string) error {
	absPath, err := backupFile(path)
	if err != nil {
		return err
	}

	if isVaultFile(absPath, vaultPath) {
		return errors.NewInvalidRequest("path must not be the vault file or a copy the store moved aside")
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		if err := checkBackupDir(filepath.Dir(absPath), cfg); err != nil {
			return err
		}
	}

	info, statErr := os.Lstat(absPath)
	switch mode {
	case PathCheckWrite:
		if statErr == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("export path must not be a symlink")
		}
	case PathCheckRead:
		if os.IsNotExist(statErr) {
			return errors.NewFileNotFound(path)
		}
	}
	return nil
}

// backupFile applies the name rules and returns the absolute path.
func backupFile(path string) (string, error) {
	if path == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ExportExtension {
		return "", errors.NewInvalidRequest("path must have " + ExportExtension + " extension")
	}
	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	return absPath, nil
}

// isVaultFile reports whether absPath names the vault, a quarantined copy of
// it, or the same file through another link.
func isVaultFile(absPath, vaultPath string) bool {
	if vaultPath == "" {
		return false
	}
	vaultAbs, err := filepath.Abs(vaultPath)
	if err != nil {
		return false
	}

	names := []string{vaultAbs}
	if resolved, err := filepath.EvalSymlinks(vaultAbs); err == nil && resolved != vaultAbs {
		names = append(names, resolved)
	}
	for _, name := range names {
		if absPath == name || strings.HasPrefix(absPath, name+quarantineMarker) {
			return true
		}
	}

	backupInfo, err := os.Stat(absPath)
	if err != nil {
		return false
	}
	vaultInfo, err := os.Stat(vaultAbs)
	if err != nil {
		return false
	}
	return os.SameFile(backupInfo, vaultInfo)
}

// checkBackupDir requires dir to be one of the backup directories itself,
// not a subdirectory and not a symlink to one.
func checkBackupDir(dir string, cfg *config.Config) error {
	allowed, err := backupDirs(cfg)
	if err != nil {
		return err
	}

	dir = filepath.Clean(dir)
	found := false
	for _, d := range allowed {
		if dir == d {
			found = true
			break
		}
	}
	if !found {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
	}

	if info, err := os.Lstat(dir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	return nil
}

// backupDirs lists ~/.vault/exports and the absolute allowed_paths entries.
// An entry that is itself a symlink is replaced by its target.
func backupDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{defaultDir}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	for i, d := range dirs {
		info, err := os.Lstat(d)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		resolved, err := filepath.EvalSymlinks(d)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
		}
		dirs[i] = resolved
	}
	return dirs, nil
}

// DefaultExportsDir returns the default exports directory (~/.vault/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, config.DirName, "exports"), nil
}

// containsTraversal reports whether any component of path, split on either
// slash, is "..".
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	for _, part := range parts {
		if part == ".." {
			return true
		}
	}
	return false
}
