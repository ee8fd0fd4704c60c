package logfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_AppendsNeverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions_log.txt")
	a := New(path)
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, "first entry\n"))
	require.NoError(t, a.Append(ctx, "second entry\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "first entry\n\nsecond entry\n\n", string(data))
}

func TestAppend_UnwritablePath(t *testing.T) {
	// The temp dir itself is not a writable file path.
	a := New(t.TempDir())

	err := a.Append(context.Background(), "entry\n")
	require.Error(t, err)

	var lwErr *LogWriteError
	require.ErrorAs(t, err, &lwErr)
	assert.Equal(t, a.Path(), lwErr.Path)
}

func TestAppend_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions_log.txt")
	a := New(path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Append(ctx, "entry\n")
	var lwErr *LogWriteError
	require.ErrorAs(t, err, &lwErr)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheck_Writable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions_log.txt")
	a := New(path)
	require.NoError(t, a.Check(context.Background()))
}

func TestCheck_Unwritable(t *testing.T) {
	a := New(t.TempDir())
	require.Error(t, a.Check(context.Background()))
}

func TestScanBlocks(t *testing.T) {
	log := "--- RECEIPT ---\nline one\n=========================\n\n" +
		"--- RECEIPT ---\nline two\n=========================\n\n"

	var blocks []string
	err := ScanBlocks(strings.NewReader(log), func(block string) error {
		blocks = append(blocks, block)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, blocks, 2)
	assert.Equal(t, "--- RECEIPT ---\nline one\n=========================\n", blocks[0])
	assert.Contains(t, blocks[1], "line two")
}

func TestScanBlocks_NoTrailingSeparator(t *testing.T) {
	log := "--- RECEIPT ---\nonly block\n"

	var blocks []string
	err := ScanBlocks(strings.NewReader(log), func(block string) error {
		blocks = append(blocks, block)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
}
