package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-vcf/internal/duckdb"
)

func (a *app) newLookupCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "lookup <key>...",
		Short: "Find loaded records by identity key",
		Long: `Print every record stored by "load" whose key matches, one row per
source file. Keys have the form chrom_pos_ref/alt, with multiple alternate
alleles joined by commas.`,
		Example: `  vibe-vcf lookup 20_14370_G/A
  vibe-vcf lookup --db /tmp/records.duckdb "1_50_N/<DEL>"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.databasePath(cmd, dbPath)
			if err != nil {
				return err
			}
			return runLookup(cmd.OutOrStdout(), path, args)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default: db.path)")

	return cmd
}

func runLookup(w io.Writer, dbPath string, keys []string) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var found []duckdb.StoredRecord
	for _, key := range keys {
		records, err := store.LookupKey(key)
		if err != nil {
			return err
		}
		found = append(found, records...)
	}
	if len(found) == 0 {
		return fmt.Errorf("no stored records match %v", keys)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Key\tSource\tLocation\tID\tQUAL\tFILTER\tVariant_type")
	for _, r := range found {
		location := r.Chrom + ":" + strconv.FormatInt(r.Pos, 10)
		if r.End != nil {
			location += "-" + strconv.FormatInt(*r.End, 10)
		}
		qual := "-"
		if r.Qual != nil {
			qual = strconv.FormatFloat(*r.Qual, 'g', -1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Key, r.Source, location, orDash(r.ID), qual, orDash(r.Filter), orDash(r.VariantType))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
