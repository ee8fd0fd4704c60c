// Command receipt-archive compresses the append-only transaction log into
// timestamped gzip archives. Blocks already present in an existing archive
// are skipped, so the tool can run repeatedly against a growing log without
// duplicating receipts. The source log is never modified.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/ecomarket/ecopos/internal/storage/logfile"
)

const (
	// bloomCapacity bounds the receipts one archive is expected to hold.
	bloomCapacity = 100_000
	bloomFPR      = 0.001

	archiveTimeLayout = "20060102-150405"
)

func main() {
	var (
		logFile    string
		archiveDir string
	)

	flag.StringVar(&logFile, "log-file", "transactions_log.txt", "transaction log to archive")
	flag.StringVar(&archiveDir, "archive-dir", "archive", "directory holding receipt archives")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, logFile, archiveDir); err != nil {
		slog.Error("receipt archive failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("receipt archive completed successfully")
}

func run(ctx context.Context, logFile, archiveDir string) error {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return errors.Wrap(err, "create archive dir")
	}

	archives, err := filepath.Glob(filepath.Join(archiveDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list archives")
	}

	// Pass 1: build one bloom filter of block digests per existing archive.
	slog.Info("scanning existing archives", slog.Int("archives", len(archives)))

	filters, err := buildArchiveFilters(ctx, archives)
	if err != nil {
		return errors.Wrap(err, "scan archives")
	}

	// Pass 2: collect log blocks not present in any archive.
	blocks, total, err := collectNewBlocks(ctx, logFile, filters)
	if err != nil {
		return errors.Wrap(err, "read transaction log")
	}

	slog.Info("transaction log scanned",
		slog.Int("blocks", total),
		slog.Int("new", len(blocks)),
	)

	if len(blocks) == 0 {
		slog.Info("nothing new to archive")
		return nil
	}

	out := filepath.Join(archiveDir, fmt.Sprintf("receipts-%s.gz", time.Now().Format(archiveTimeLayout)))
	if err := writeArchive(out, blocks); err != nil {
		return errors.Wrapf(err, "write archive %s", out)
	}

	slog.Info("archive written", slog.String("path", out), slog.Int("receipts", len(blocks)))
	return nil
}

// buildArchiveFilters scans the given archives concurrently and returns a
// digest filter per archive.
func buildArchiveFilters(ctx context.Context, archives []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(archives))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range archives {
		g.Go(buildFilterForArchive(ctx, i, path, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForArchive(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count int

		if err := streamArchiveBlocks(ctx, path, func(block string) {
			filter.Add(blockDigest(block))
			count++
		}); err != nil {
			return errors.Wrapf(err, "scan archive %s", path)
		}

		slog.Info("archive scanned", slog.String("path", path), slog.Int("receipts", count))

		filters[idx] = filter
		return nil
	}
}

// streamArchiveBlocks opens a gzip archive and calls fn for each receipt block.
func streamArchiveBlocks(ctx context.Context, path string, fn func(block string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	return logfile.ScanBlocks(gz, func(block string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(block)
		return nil
	})
}

// collectNewBlocks reads the transaction log and returns the blocks whose
// digest matches no archive filter, along with the total block count.
func collectNewBlocks(ctx context.Context, logFile string, filters []*bloom.BloomFilter) ([]string, int, error) {
	f, err := os.Open(logFile)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "open %s", logFile)
	}
	defer func() { _ = f.Close() }()

	var (
		blocks []string
		total  int
	)
	err = logfile.ScanBlocks(f, func(block string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++
		if archived(filters, block) {
			return nil
		}
		blocks = append(blocks, block)
		return nil
	})
	return blocks, total, err
}

func archived(filters []*bloom.BloomFilter, block string) bool {
	digest := blockDigest(block)
	for _, filter := range filters {
		if filter.Test(digest) {
			return true
		}
	}
	return false
}

func blockDigest(block string) []byte {
	sum := sha256.Sum256([]byte(block))
	return sum[:]
}

// writeArchive writes the blocks to a new gzip archive, blank-line separated
// like the source log.
func writeArchive(path string, blocks []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "create")
	}

	gz := pgzip.NewWriter(f)
	for _, block := range blocks {
		if _, err := gz.Write([]byte(block + "\n")); err != nil {
			_ = gz.Close()
			_ = f.Close()
			return errors.Wrap(err, "write block")
		}
	}

	if err := gz.Close(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "close gzip writer")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close file")
	}
	return nil
}
