package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/vault/internal/config"
	"github.com/hpungsan/vault/internal/errors"
)

// withHome points the home directory at a fresh temp dir and returns it.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestValidatePath_Rejections(t *testing.T) {
	withHome(t)
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent traversal", "../backup.jsonl"},
		{"mid-path traversal", "/tmp/../etc/backup.jsonl"},
		{"no extension", "/tmp/backup"},
		{"xml extension", "/tmp/vault_database.xml"},
		{"outside allowed dirs", "/tmp/backup.jsonl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, PathCheckWrite, cfg, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestValidatePath_DefaultExportsDir(t *testing.T) {
	home := withHome(t)
	cfg := config.DefaultConfig()

	dir, err := DefaultExportsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vault", "exports"), dir)

	// The directory need not exist yet for a write.
	assert.NoError(t, ValidatePath(filepath.Join(dir, "backup.jsonl"), PathCheckWrite, cfg, ""))

	// Subdirectories are not allowed.
	err = ValidatePath(filepath.Join(dir, "nested", "backup.jsonl"), PathCheckWrite, cfg, "")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	withHome(t)
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	file := filepath.Join(allowed, "in.jsonl")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0600))
	assert.NoError(t, ValidatePath(file, PathCheckRead, cfg, ""))

	other := filepath.Join(t.TempDir(), "other.jsonl")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0600))
	assert.Error(t, ValidatePath(other, PathCheckRead, cfg, ""))
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	withHome(t)
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	assert.NoError(t, ValidatePath(filepath.Join(dir, "out.jsonl"), PathCheckWrite, cfg, ""))

	// Extension and traversal rules still apply.
	assert.Error(t, ValidatePath(filepath.Join(dir, "out.txt"), PathCheckWrite, cfg, ""))
	assert.Error(t, ValidatePath(dir+"/../out.jsonl", PathCheckWrite, cfg, ""))
}

func TestValidatePath_ReadMissingFile(t *testing.T) {
	withHome(t)
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	err := ValidatePath(filepath.Join(t.TempDir(), "missing.jsonl"), PathCheckRead, cfg, "")
	assert.True(t, errors.Is(err, errors.ErrFileNotFound), "got %v", err)
}

func TestValidatePath_SymlinkTarget(t *testing.T) {
	withHome(t)
	dir := t.TempDir()

	target := filepath.Join(dir, "target.jsonl")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0600))
	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	for _, unsafe := range []bool{false, true} {
		cfg := config.DefaultConfig()
		cfg.AllowedPaths = []string{dir}
		cfg.AllowUnsafePaths = unsafe

		err := ValidatePath(link, PathCheckWrite, cfg, "")
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "unsafe=%v: %v", unsafe, err)

		// Reads are refused when the file is opened.
		assert.NoError(t, ValidatePath(link, PathCheckRead, cfg, ""), "unsafe=%v", unsafe)
	}
}

func TestValidatePath_SymlinkedParentRejected(t *testing.T) {
	home := withHome(t)
	target := t.TempDir()
	exports := filepath.Join(home, ".vault", "exports")
	require.NoError(t, os.MkdirAll(filepath.Dir(exports), 0700))
	if err := os.Symlink(target, exports); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	// The default dir resolves to its target, so the link itself is not a match.
	err := ValidatePath(filepath.Join(exports, "backup.jsonl"), PathCheckWrite, config.DefaultConfig(), "")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	assert.NoError(t, ValidatePath(filepath.Join(target, "backup.jsonl"), PathCheckWrite, config.DefaultConfig(), ""))
}

func TestValidatePath_VaultFileRefused(t *testing.T) {
	withHome(t)
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "vault.jsonl")
	require.NoError(t, os.WriteFile(vaultPath, []byte("<vault/>"), 0600))

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}

	link := filepath.Join(t.TempDir(), "alias.jsonl")
	haveLink := os.Symlink(vaultPath, link) == nil
	hard := filepath.Join(dir, "hard.jsonl")
	haveHard := os.Link(vaultPath, hard) == nil

	tests := []struct {
		name string
		path string
		skip bool
	}{
		{"vault itself", vaultPath, false},
		{"uncleaned spelling", dir + string(filepath.Separator) + "." + string(filepath.Separator) + "vault.jsonl", false},
		{"hard link", hard, !haveHard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.skip {
				t.Skip("link not supported")
			}
			for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
				err := ValidatePath(tt.path, mode, cfg, vaultPath)
				assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "mode=%v: %v", mode, err)
			}
		})
	}

	if haveLink {
		unsafe := config.DefaultConfig()
		unsafe.AllowUnsafePaths = true
		err := ValidatePath(link, PathCheckRead, unsafe, vaultPath)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "symlink to vault: %v", err)
	}

	other := filepath.Join(dir, "backup.jsonl")
	assert.NoError(t, ValidatePath(other, PathCheckWrite, cfg, vaultPath))
}

func TestIsVaultFile(t *testing.T) {
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "vault_database.xml")

	tests := []struct {
		path string
		want bool
	}{
		{vaultPath, true},
		{vaultPath + ".corrupt-20261017T083000", true},
		{vaultPath + ".corrupt-20261017T083000.jsonl", true},
		{filepath.Join(dir, "vault_database.jsonl"), false},
		{filepath.Join(dir, "backup.jsonl"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isVaultFile(tt.path, vaultPath), tt.path)
	}
	assert.False(t, isVaultFile(vaultPath, ""), "no vault path configured")
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/home/u/.vault/exports/a.jsonl", false},
		{"a..b.jsonl", false},
		{"../a.jsonl", true},
		{"/x/../a.jsonl", true},
		{"x/..", true},
		{"x/../", true},
		{"..hidden.jsonl", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsTraversal(tt.path), tt.path)
	}
}
