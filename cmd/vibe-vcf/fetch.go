package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/loader"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

func (a *app) newFetchCmd() *cobra.Command {
	var format, inputFormat string
	var normalize bool

	cmd := &cobra.Command{
		Use:   "fetch <file> <chrom> <start> <end>",
		Short: "Print records overlapping a genomic window",
		Long: `Print the records whose span overlaps the half-open window [start, end)
on chrom. A record spans from POS to INFO END when END is present.`,
		Example: `  vibe-vcf fetch sample.vcf 20 14000 18000
  vibe-vcf fetch -f vcf sv.vcf.gz 1 100 200
  vibe-vcf fetch --normalize-chrom sample.vcf chr20 14000 18000`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return &usageError{err: fmt.Errorf("invalid start %q: %w", args[2], err)}
			}
			end, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return &usageError{err: fmt.Errorf("invalid end %q: %w", args[3], err)}
			}
			if end < start {
				return &usageError{err: fmt.Errorf("end %d is before start %d", end, start)}
			}
			if !cmd.Flags().Changed("format") && a.cfg.Output.Format != "" {
				format = a.cfg.Output.Format
			}

			var inFormat loader.Format
			if inputFormat != "" {
				if inFormat, err = loader.ParseFormat(inputFormat); err != nil {
					return &usageError{err: err}
				}
			}

			doc, err := loader.Load(args[0], inFormat, a.newParser())
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			fetch := vcf.Fetch
			if normalize {
				fetch = vcf.FetchNormalized
			}
			hits := fetch(doc.Records, args[1], start, end)
			a.logger.Debug("fetch",
				zap.String("chrom", args[1]),
				zap.Int64("start", start),
				zap.Int64("end", end),
				zap.Int("matched", len(hits)))

			return writeDocument(cmd.OutOrStdout(), format, &vcf.Document{Header: doc.Header, Records: hits})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTab, "Output format: tab, vcf, json")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format: vcf, json (default: from extension)")
	cmd.Flags().BoolVar(&normalize, "normalize-chrom", false, `Ignore a "chr" prefix when matching chromosomes`)

	return cmd
}
