package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/vault/internal/config"
	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/record"
	"github.com/hpungsan/vault/internal/store"
)

func unsafeConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestExport_HappyPath(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, "alice", "secret1", "Mail")
	mustAdd(t, st, "bob <&>", "pw", "Bank")

	exportPath := filepath.Join(t.TempDir(), "backup.jsonl")
	out, err := Export(context.Background(), st, unsafeConfig(), ExportInput{Path: exportPath})
	require.NoError(t, err)

	assert.Equal(t, exportPath, out.Path)
	assert.Equal(t, 2, out.Count)
	assert.NotZero(t, out.ExportedAt)
	_, err = ulid.ParseStrict(out.ExportID)
	assert.NoError(t, err, "export_id must be a ULID")

	lines := readLines(t, exportPath)
	require.Len(t, lines, 3)

	var header ExportHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.True(t, header.VaultExport)
	assert.Equal(t, ExportSchemaVersion, header.SchemaVersion)
	assert.Equal(t, out.ExportedAt, header.ExportedAt)
	assert.Equal(t, out.ExportID, header.ExportID)

	var first record.ExportRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &first))
	assert.False(t, first.VaultExport)
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, "6384e2b2184bcbf58eccf10ca7a6563c", first.UsernameHash)

	assert.Contains(t, lines[2], `"bob <&>"`, "HTML characters are not escaped")

	info, err := os.Stat(exportPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExport_EmptyVault(t *testing.T) {
	st := newTestStore(t)

	exportPath := filepath.Join(t.TempDir(), "empty.jsonl")
	out, err := Export(context.Background(), st, unsafeConfig(), ExportInput{Path: exportPath})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.Len(t, readLines(t, exportPath), 1)

	_, statErr := os.Stat(st.Path())
	assert.True(t, os.IsNotExist(statErr), "export must not create the vault file")
}

func TestExport_DefaultPath(t *testing.T) {
	home := withHome(t)
	st := newTestStore(t)
	mustAdd(t, st, "alice", "secret1", "")

	out, err := Export(context.Background(), st, config.DefaultConfig(), ExportInput{})
	require.NoError(t, err)

	dir := filepath.Join(home, ".vault", "exports")
	assert.Equal(t, dir, filepath.Dir(out.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(out.Path), "vault-"))
	assert.Equal(t, ".jsonl", filepath.Ext(out.Path))
	assert.Len(t, readLines(t, out.Path), 2)
}

func TestExport_OverwritesExisting(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, "alice", "secret1", "")

	exportPath := filepath.Join(t.TempDir(), "backup.jsonl")
	require.NoError(t, os.WriteFile(exportPath, []byte("old\n"), 0600))

	_, err := Export(context.Background(), st, unsafeConfig(), ExportInput{Path: exportPath})
	require.NoError(t, err)

	lines := readLines(t, exportPath)
	require.Len(t, lines, 2)
	assert.NotEqual(t, "old", lines[0])
}

func TestExport_PathRestricted(t *testing.T) {
	withHome(t)
	st := newTestStore(t)

	_, err := Export(context.Background(), st, config.DefaultConfig(), ExportInput{
		Path: filepath.Join(t.TempDir(), "backup.jsonl"),
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestExport_Cancelled(t *testing.T) {
	st := newTestStore(t)
	mustAdd(t, st, "alice", "secret1", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exportPath := filepath.Join(t.TempDir(), "backup.jsonl")
	_, err := Export(ctx, st, unsafeConfig(), ExportInput{Path: exportPath})
	assert.True(t, errors.Is(err, errors.ErrCancelled))

	_, statErr := os.Stat(exportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_UnparsableVaultFails(t *testing.T) {
	for _, strict := range []bool{false, true} {
		st := newTestStore(t, store.WithStrictParse(strict))
		require.NoError(t, os.WriteFile(st.Path(), []byte("<vault><entry>"), 0600))

		exportPath := filepath.Join(t.TempDir(), "backup.jsonl")
		_, err := Export(context.Background(), st, unsafeConfig(), ExportInput{Path: exportPath})
		assert.True(t, errors.Is(err, errors.ErrParseFailure), "strict=%v: %v", strict, err)

		_, statErr := os.Stat(exportPath)
		assert.True(t, os.IsNotExist(statErr), "strict=%v: no backup file", strict)

		data, readErr := os.ReadFile(st.Path())
		require.NoError(t, readErr)
		assert.Equal(t, "<vault><entry>", string(data), "vault file untouched")
	}
}

func TestExport_RefusesVaultFile(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "vault.jsonl"))
	mustAdd(t, st, "alice", "secret1", "")
	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	_, err = Export(context.Background(), st, unsafeConfig(), ExportInput{Path: st.Path()})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
