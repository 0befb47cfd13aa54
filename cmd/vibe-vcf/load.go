package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/duckdb"
	"github.com/inodb/vibe-vcf/internal/loader"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

// databasePath returns --db when given, else the db.path setting.
func (a *app) databasePath(cmd *cobra.Command, flag string) (string, error) {
	if !cmd.Flags().Changed("db") && a.cfg.DB.Path != "" {
		flag = a.cfg.DB.Path
	}
	if flag == "" {
		return "", &usageError{err: errors.New("no database path: pass --db or set db.path")}
	}
	return flag, nil
}

// loadBatchSize is the number of records appended per Appender flush.
const loadBatchSize = 10000

func (a *app) newLoadCmd() *cobra.Command {
	var dbPath string
	var force, reset bool

	cmd := &cobra.Command{
		Use:   "load <file>...",
		Short: "Load VCF records into a DuckDB database",
		Long: `Stream each VCF into DuckDB, keyed by source path and record key.
Files that are unchanged since their last load (same size and mtime) are skipped
unless --force is given. A file that fails to load keeps its previous rows.
JSON documents written by "parse -f json" are accepted too.`,
		Example: `  vibe-vcf load sample.vcf.gz
  vibe-vcf load --db /tmp/records.duckdb a.vcf b.vcf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.databasePath(cmd, dbPath)
			if err != nil {
				return err
			}
			return a.runLoad(cmd.OutOrStdout(), path, args, force, reset)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default: db.path)")
	cmd.Flags().BoolVar(&force, "force", false, "Reload files even when unchanged")
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove every stored record and source before loading")

	return cmd
}

func (a *app) runLoad(w io.Writer, dbPath string, paths []string, force, reset bool) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if reset {
		if err := store.ClearRecords(); err != nil {
			return fmt.Errorf("reset database: %w", err)
		}
		a.logger.Info("database reset", zap.String("db", dbPath))
	}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		fp, err := duckdb.StatFile(abs)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if !force {
			loaded, err := store.SourceLoaded(fp)
			if err != nil {
				return err
			}
			if loaded {
				a.logger.Info("source unchanged, skipping", zap.String("path", abs))
				continue
			}
		}

		start := time.Now()
		n, err := a.loadFile(store, abs)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := store.MarkSourceLoaded(fp, n); err != nil {
			return err
		}
		a.logger.Info("source loaded",
			zap.String("path", abs),
			zap.Int("records", n),
			zap.Duration("elapsed", time.Since(start)))
	}

	counts, err := store.CountByType()
	if err != nil {
		return err
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		label := t
		if label == "" {
			label = "other"
		}
		fmt.Fprintf(w, "%s\t%d\n", label, counts[t])
	}
	return nil
}

// loadFile replaces the rows for path with its records. VCF input is
// streamed; JSON documents are decoded whole.
func (a *app) loadFile(store *duckdb.Store, path string) (int, error) {
	if loader.DetectFormat(path) == loader.FormatJSON {
		doc, err := loader.Load(path, loader.FormatJSON, a.newParser())
		if err != nil {
			return 0, err
		}
		i := 0
		return store.ReplaceSource(path, loadBatchSize, func() (*vcf.Record, error) {
			if i == len(doc.Records) {
				return nil, nil
			}
			i++
			return doc.Records[i-1], nil
		})
	}

	rc, err := loader.Open(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	rd, err := vcf.NewReader(rc, a.newParser())
	if err != nil {
		return 0, err
	}
	return store.ReplaceSource(path, loadBatchSize, rd.Next)
}
