package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir string, blocks ...string) string {
	t.Helper()
	path := filepath.Join(dir, "transactions_log.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	for _, block := range blocks {
		_, err := f.WriteString(block + "\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
	return path
}

func listArchives(t *testing.T, dir string) []string {
	t.Helper()
	archives, err := filepath.Glob(filepath.Join(dir, "*.gz"))
	require.NoError(t, err)
	return archives
}

func readArchive(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	require.NoError(t, err)
	defer func() { _ = gz.Close() }()

	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(data)
}

func TestRun_ArchivesLogBlocks(t *testing.T) {
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")
	logFile := writeLog(t, dir,
		"--- RECEIPT ---\nfirst sale\n=========================\n",
		"--- RECEIPT ---\nsecond sale\n=========================\n",
	)

	require.NoError(t, run(context.Background(), logFile, archiveDir))

	archives := listArchives(t, archiveDir)
	require.Len(t, archives, 1)

	content := readArchive(t, archives[0])
	assert.Contains(t, content, "first sale")
	assert.Contains(t, content, "second sale")
}

func TestRun_SecondRunArchivesNothingNew(t *testing.T) {
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")
	logFile := writeLog(t, dir,
		"--- RECEIPT ---\nfirst sale\n=========================\n",
	)

	require.NoError(t, run(context.Background(), logFile, archiveDir))
	require.Len(t, listArchives(t, archiveDir), 1)

	// An unchanged log yields no second archive.
	require.NoError(t, run(context.Background(), logFile, archiveDir))
	assert.Len(t, listArchives(t, archiveDir), 1)
}

func TestRun_OnlyNewBlocksArchived(t *testing.T) {
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")
	logFile := writeLog(t, dir,
		"--- RECEIPT ---\nfirst sale\n=========================\n",
	)

	require.NoError(t, run(context.Background(), logFile, archiveDir))
	require.Len(t, listArchives(t, archiveDir), 1)

	// Sidestep the second-resolution archive name for the follow-up run.
	earlier := filepath.Join(archiveDir, "receipts-earlier.gz")
	require.NoError(t, os.Rename(listArchives(t, archiveDir)[0], earlier))

	writeLog(t, dir, "--- RECEIPT ---\nthird sale\n=========================\n")
	require.NoError(t, run(context.Background(), logFile, archiveDir))

	archives := listArchives(t, archiveDir)
	require.Len(t, archives, 2)

	var second string
	for _, a := range archives {
		if a != earlier {
			second = a
		}
	}
	content := readArchive(t, second)
	assert.Contains(t, content, "third sale")
	assert.NotContains(t, content, "first sale")
}

func TestRun_MissingLogFile(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), filepath.Join(dir, "absent.txt"), filepath.Join(dir, "archive"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read transaction log")
}
