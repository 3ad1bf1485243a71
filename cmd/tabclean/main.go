// Package main provides the tabclean command line tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/javajack/tabclean"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
	extract    bool
	scanRows   int
	colWindow  int

	cfg    Config
	logger *slog.Logger
	out    io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{out: stdout}
	rootCmd := &cobra.Command{
		Use:   "tabclean",
		Short: "Clean and split spreadsheet tables",
		Long: `tabclean removes leading empty rows and columns from xlsx, csv and tsv files
while keeping formulas pointing at the same data, trims text cells, and splits
sheets holding several tables into one table per sheet or file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML config file")
	pf.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&c.logFormat, "log-format", "", "Log format: text, json")
	pf.IntVarP(&c.workers, "workers", "j", 0, "Files processed in parallel (default: number of CPUs)")
	pf.BoolVar(&c.extract, "extract", false, "Extract archives found in input folders and process their content")
	pf.IntVar(&c.scanRows, "scan-rows", 0, "Leading rows inspected for vertical padding (default 21)")
	pf.IntVar(&c.colWindow, "column-window", 0, "Rows inspected when testing a column for emptiness (default 50)")

	rootCmd.AddCommand(
		c.processCmd("clean", "Remove padding and trim text cells", true, true),
		c.processCmd("unpad", "Remove leading empty rows and columns", true, false),
		c.processCmd("strip-text", "Trim surrounding whitespace from text cells", false, true),
		c.checkCmd(),
		c.splitCmd(),
		c.convertCmd(),
		c.describeCmd(),
	)
	return rootCmd
}

// setup merges the config file with the flags and configures logging.
func (c *cli) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("extract") {
		cfg.Extract = c.extract
	}
	if flags.Changed("scan-rows") {
		cfg.Limits.ScanRows = c.scanRows
	}
	if flags.Changed("column-window") {
		cfg.Limits.ColumnWindow = c.colWindow
	}
	c.cfg = cfg
	c.logger = setupLogging(stderr, cfg.Log.Level, cfg.Log.Format)
	return nil
}

// batch builds a Batch from the config. noCopy skips unsupported files
// instead of copying them; formats restricts the processed inputs.
func (c *cli) batch(noCopy bool, formats ...tabclean.Format) *tabclean.Batch {
	return &tabclean.Batch{
		Workers: c.cfg.Workers,
		Extract: c.cfg.Extract,
		NoCopy:  noCopy,
		Formats: formats,
		Logger:  c.logger,
	}
}

// run resolves SRC and DST and runs fn over them. With inplace only SRC is
// given: outputs are written next to each source file, unsupported files are
// left alone, and a source whose output has another name is removed.
func (c *cli) run(cmd *cobra.Command, args []string, inplace bool, fn tabclean.FileFunc, formats ...tabclean.Format) (*tabclean.BatchResult, error) {
	if !inplace {
		if len(args) != 2 {
			return nil, fmt.Errorf("DST is required unless --inplace is given")
		}
		return c.batch(false, formats...).Run(cmd.Context(), args[0], args[1], fn)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("--inplace takes SRC only")
	}
	src := args[0]
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tabclean.ErrFileNotFound, src)
	}
	dst := src
	if !info.IsDir() {
		dst = filepath.Dir(src)
	}
	return c.batch(true, formats...).Run(cmd.Context(), src, dst, replaceSource(fn))
}

// replaceSource removes the source file once fn wrote outputs that do not
// overwrite it.
func replaceSource(fn tabclean.FileFunc) tabclean.FileFunc {
	return func(ctx context.Context, src, dstDir string) tabclean.FileResult {
		res := fn(ctx, src, dstDir)
		if res.Err != nil || len(res.Outputs) == 0 {
			return res
		}
		overwritten := slices.ContainsFunc(res.Outputs, func(p string) bool {
			return filepath.Clean(p) == filepath.Clean(src)
		})
		if !overwritten {
			if err := os.Remove(src); err != nil {
				res.Err = tabclean.NewProcessError(src, "", "write", err)
			}
		}
		return res
	}
}

// processCmd builds clean, unpad and strip-text, which differ only in the
// processor options.
func (c *cli) processCmd(use, short string, unpad, strip bool) *cobra.Command {
	var to string
	var inplace bool
	cmd := &cobra.Command{
		Use:   use + " SRC [DST]",
		Short: short,
		Long: short + `.

SRC is a file or a folder. Folders are processed recursively and mirrored into
the DST folder; files of unsupported formats are copied unchanged. With
--inplace no DST is given and every file is rewritten where it is.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseOutputFormat(to)
			if err != nil {
				return err
			}
			doUnpad, doStrip := unpad, strip
			if use == "clean" {
				doUnpad, doStrip = c.cfg.Unpad, c.cfg.Strip
			}
			p := tabclean.NewProcessor(
				tabclean.WithUnpad(doUnpad),
				tabclean.WithStripText(doStrip),
				tabclean.WithLimits(c.cfg.Limits),
				tabclean.WithLogger(c.logger),
			)
			res, err := c.run(cmd, args, inplace, processFile(p, outFormat))
			if err != nil {
				return err
			}
			c.printResult(res)
			return res.Err()
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output format: xlsx, csv, tsv (default: input format, csv for txt/dat)")
	cmd.Flags().BoolVar(&inplace, "inplace", false, "Rewrite files in place instead of writing to DST")
	return cmd
}

func processFile(p *tabclean.Processor, to tabclean.Format) tabclean.FileFunc {
	return func(_ context.Context, src, dstDir string) tabclean.FileResult {
		wb, err := tabclean.Load(src)
		if err != nil {
			return tabclean.FileResult{Err: tabclean.NewProcessError(src, "", "read", err)}
		}
		report := p.Process(wb)
		paths, err := tabclean.Export(wb, dstDir, stem(src), outputFormat(wb.Format, to))
		if err != nil {
			return tabclean.FileResult{Report: report, Err: tabclean.NewProcessError(src, "", "write", err)}
		}
		return tabclean.FileResult{Outputs: paths, Report: report}
	}
}

func (c *cli) checkCmd() *cobra.Command {
	var opts tabclean.CheckOptions
	cmd := &cobra.Command{
		Use:   "check SRC",
		Short: "Report padding, untrimmed text and multi-table sheets without changing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Padding && !opts.Strip && !opts.MultiTable {
				opts.Padding, opts.Strip, opts.MultiTable = true, true, true
			}
			opts.Limits = c.cfg.Limits
			dst, err := os.MkdirTemp("", "tabclean-check-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dst)

			res, err := c.batch(true).Run(cmd.Context(), args[0], dst, func(_ context.Context, src, _ string) tabclean.FileResult {
				wb, err := tabclean.Load(src)
				if err != nil {
					return tabclean.FileResult{Err: tabclean.NewProcessError(src, "", "read", err)}
				}
				return tabclean.FileResult{Issues: tabclean.Check(wb, opts)}
			})
			if err != nil {
				return err
			}
			failed := false
			for _, f := range res.Files {
				if f.Err != nil {
					fmt.Fprintf(c.out, "%s: %v\n", f.Src, f.Err)
					continue
				}
				if len(f.Issues) == 0 {
					fmt.Fprintf(c.out, "%s: ok\n", f.Src)
					continue
				}
				fmt.Fprintf(c.out, "%s:\n", f.Src)
				for _, issue := range f.Issues {
					fmt.Fprintf(c.out, "  %s\n", issue)
				}
				failed = failed || tabclean.HasErrors(f.Issues)
			}
			if err := res.Err(); err != nil {
				return err
			}
			if failed {
				return fmt.Errorf("check found errors")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Padding, "padding", false, "Report leading empty rows and columns")
	cmd.Flags().BoolVar(&opts.Strip, "strip", false, "Report text cells with surrounding whitespace")
	cmd.Flags().BoolVar(&opts.MultiTable, "multi-table", false, "Report sheets that look like several tables")
	cmd.Flags().IntVar(&opts.MaxCells, "max-cells", 10, "Untrimmed cells listed per sheet")
	return cmd
}

func (c *cli) splitCmd() *cobra.Command {
	var strategy, where, format string
	var inplace bool
	cmd := &cobra.Command{
		Use:   "split SRC [DST]",
		Short: "Split sheets holding several tables",
		Long: `Split sheets holding several tables into one table per sheet (xlsx) or per file.

Strategies:
  columns  tables side by side, separated by empty columns
  rows     tables stacked, separated by empty rows
  all      tables laid out freely, found by bounding-box growth
  pairs    column split, then one (X, Y) table per data column

--where keeps only tables matching an expression over
sheet, key, title, index, rows, cols and headers, e.g. 'rows > 1 && "time" in headers'.

With --inplace the tables are written next to each source file, which is removed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := tabclean.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			filter, err := tabclean.NewTableFilter(where)
			if err != nil {
				return err
			}
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			res, err := c.run(cmd, args, inplace, func(_ context.Context, src, dstDir string) tabclean.FileResult {
				wb, err := tabclean.Load(src)
				if err != nil {
					return tabclean.FileResult{Err: tabclean.NewProcessError(src, "", "read", err)}
				}
				sts, err := tabclean.SplitWorkbook(wb, s, filter)
				if err != nil {
					return tabclean.FileResult{Err: err}
				}
				paths, err := tabclean.WriteTables(sts, dstDir, stem(src), s, outputFormat(wb.Format, outFormat))
				return tabclean.FileResult{Outputs: paths, Err: err}
			})
			if err != nil {
				return err
			}
			c.printResult(res)
			return res.Err()
		},
	}
	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(tabclean.StrategyColumns), "Split strategy: columns, rows, all, pairs")
	cmd.Flags().StringVar(&where, "where", "", "Keep only tables matching this expression")
	cmd.Flags().StringVar(&format, "format", "", "Output format: xlsx, csv, tsv (default: input format, csv for txt/dat)")
	cmd.Flags().BoolVar(&inplace, "inplace", false, "Write tables next to each source file and remove it")
	return cmd
}

func (c *cli) convertCmd() *cobra.Command {
	var to, inFormat string
	var inplace bool
	cmd := &cobra.Command{
		Use:   "convert SRC [DST]",
		Short: "Convert between xlsx, csv and tsv without other changes",
		Long: `Convert between xlsx, csv and tsv without other changes.

--in-format limits a folder run to one input format; other files are copied
unchanged. With --inplace each converted file replaces its source, and files
already in the target format are left alone.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseOutputFormat(to)
			if err != nil {
				return err
			}
			if outFormat == "" {
				return fmt.Errorf("--to is required")
			}
			var formats []tabclean.Format
			if inFormat != "" {
				f, err := tabclean.FormatFromPath("input." + strings.TrimPrefix(inFormat, "."))
				if err != nil {
					return fmt.Errorf("--in-format: %w", err)
				}
				formats = append(formats, f)
			}
			res, err := c.run(cmd, args, inplace, func(_ context.Context, src, dstDir string) tabclean.FileResult {
				if inplace {
					if from, _ := tabclean.FormatFromPath(src); from == outFormat {
						return tabclean.FileResult{Outputs: []string{src}}
					}
				}
				wb, err := tabclean.Load(src)
				if err != nil {
					return tabclean.FileResult{Err: tabclean.NewProcessError(src, "", "read", err)}
				}
				paths, err := tabclean.Export(wb, dstDir, stem(src), outFormat)
				return tabclean.FileResult{Outputs: paths, Err: err}
			}, formats...)
			if err != nil {
				return err
			}
			c.printResult(res)
			return res.Err()
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output format: xlsx, csv, tsv")
	cmd.Flags().StringVar(&inFormat, "in-format", "", "Only convert files of this format: xlsx, csv, tsv, txt, dat")
	cmd.Flags().BoolVar(&inplace, "inplace", false, "Replace each source file by its converted form")
	return cmd
}

func (c *cli) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Print sheets, padding and detected tables of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := tabclean.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, tabclean.Describe(wb, c.cfg.Limits))
			return nil
		},
	}
}

func (c *cli) printResult(res *tabclean.BatchResult) {
	for _, f := range res.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(c.out, "FAIL %s: %v\n", f.Src, f.Err)
		case f.Copied:
			fmt.Fprintf(c.out, "copy %s\n", f.Src)
		default:
			fmt.Fprintf(c.out, "ok   %s -> %s", f.Src, strings.Join(f.Outputs, ", "))
			if f.Report != nil && len(f.Report.Diagnostics) > 0 {
				fmt.Fprintf(c.out, " (%d diagnostics)", len(f.Report.Diagnostics))
			}
			fmt.Fprintln(c.out)
		}
	}
}

// parseOutputFormat validates a --to/--format value. Empty keeps the input format.
func parseOutputFormat(s string) (tabclean.Format, error) {
	switch f := tabclean.Format(strings.ToLower(s)); f {
	case "", tabclean.FormatXLSX, tabclean.FormatCSV, tabclean.FormatTSV:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format: %s (must be xlsx, csv or tsv)", s)
}

// outputFormat resolves the written format; txt and dat inputs are written as csv.
func outputFormat(in, to tabclean.Format) tabclean.Format {
	if to != "" {
		return to
	}
	if in == tabclean.FormatTXT || in == tabclean.FormatDAT {
		return tabclean.FormatCSV
	}
	return in
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
