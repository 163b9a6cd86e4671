package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"kvloc/internal/interpolation"
	"kvloc/internal/localization"
	"kvloc/internal/table"
	"kvloc/internal/textutil"
	"kvloc/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func languagesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List target languages found under the root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			langs, err := opts.walker().Languages(opts.root)
			if err != nil {
				return err
			}
			for _, l := range langs {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}

func categoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories of the source language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := opts.walker().Categories(opts.root)
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func reportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show translation coverage per language and category",
		Long: `Merges every category of each target language (or only --lang) against the
source language and prints how many records count as localized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")

			ctx, cancel := setupContext()
			defer cancel()
			return runReport(ctx, opts, workers, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int("workers", opts.cfg.WorkerCount, "Number of tables read concurrently")
	return cmd
}

type reportJob struct {
	language string
	category string
}

type reportRow struct {
	coverage localization.Coverage
	partial  bool
}

func runReport(ctx context.Context, opts *options, workers int, out io.Writer) error {
	w := opts.walker()

	langs := []string{opts.target}
	if opts.target == "" {
		var err error
		if langs, err = w.Languages(opts.root); err != nil {
			return err
		}
	}
	cats, err := w.Categories(opts.root)
	if err != nil {
		return err
	}

	var jobs []reportJob
	for _, l := range langs {
		for _, c := range cats {
			jobs = append(jobs, reportJob{language: l, category: c})
		}
	}

	svc := opts.service()
	pool := worker.NewPool[reportJob, reportRow](workers,
		func(ctx context.Context, job reportJob) (reportRow, error) {
			records, err := svc.Load(job.category, job.language)
			if err != nil && !errors.Is(err, table.ErrMalformedFile) {
				return reportRow{}, err
			}
			return reportRow{coverage: localization.Measure(records), partial: err != nil}, nil
		},
	)
	tasks := pool.Execute(ctx, jobs)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tCATEGORY\tLOCALIZED\tTOTAL\tPERCENT")

	failed := 0
	for _, task := range tasks {
		if task.Err != nil {
			failed++
			log.Error().Err(task.Err).Str("language", task.Input.language).Str("category", task.Input.category).Msg("Report failed")
			continue
		}
		mark := ""
		if task.Result.partial {
			mark = " (partial)"
		}
		c := task.Result.coverage
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f%%%s\n",
			task.Input.language, task.Input.category, c.Localized, c.Total, c.Percent(), mark)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	orphans, err := w.Orphans(opts.root)
	if err != nil {
		return err
	}
	for _, o := range orphans {
		if opts.target != "" && o.Language != opts.target {
			continue
		}
		log.Warn().Str("file", o.Path).Msg("Target file has no source table")
		fmt.Fprintf(out, "no source table: %s/%s\n", o.Language, o.Category)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tables could not be read", failed, len(tasks))
	}
	return nil
}

func untranslatedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "untranslated <category>",
		Short: "List records of a category that still need translating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			records, err := loadMerged(opts.service(), args[0], opts.target, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			count := 0
			for i := -1; ; {
				next, ok := localization.NextUnlocalized(records, i)
				if !ok {
					break
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", next, records[next].ID, escapeTSV(records[next].English))
				count++
				i = next
			}

			log.Info().Int("untranslated", count).Int("total", len(records)).Msg("Scan complete")
			return nil
		},
	}
}

func findCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <category> <text>",
		Short: "Find the next record containing text (case-insensitive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			fieldName, _ := cmd.Flags().GetString("field")
			from, _ := cmd.Flags().GetInt("from")

			field, err := localization.ParseField(fieldName)
			if err != nil {
				return err
			}
			records, err := loadMerged(opts.service(), args[0], opts.target, true)
			if err != nil {
				return err
			}

			idx, ok := localization.FindNext(records, from, field, args[1])
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no match after %d\n", from)
				return nil
			}
			r := records[idx]
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", idx, r.ID, escapeTSV(r.English), escapeTSV(r.Localized))
			return nil
		},
	}
	cmd.Flags().String("field", "english", "Column to search: id, english or localized")
	cmd.Flags().Int("from", -1, "Start after this record index")
	return cmd
}

func normalizeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <category>",
		Short: "Rewrite a target table in canonical form, in source order",
		Long: `Merges the target table with the source table and writes it back, one
record per line. The previous file is kept as a .bak sibling. IDs missing
from the source language are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			skip, _ := cmd.Flags().GetBool("skip-untranslated")
			force, _ := cmd.Flags().GetBool("force")

			svc := opts.service()
			records, err := loadMerged(svc, args[0], opts.target, force)
			if err != nil {
				return err
			}
			return svc.SaveTable(args[0], opts.target, records, skip)
		},
	}
	cmd.Flags().Bool("skip-untranslated", opts.cfg.SkipUntranslated, "Omit records whose text equals the source text")
	cmd.Flags().Bool("force", false, "Rewrite even if a file is malformed, keeping only recovered records")
	return cmd
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <category>",
		Short: "Report translations that lost or gained format placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			records, err := loadMerged(opts.service(), args[0], opts.target, true)
			if err != nil {
				return err
			}

			problems := 0
			for _, r := range records {
				if r.English == r.Localized {
					continue
				}
				m := interpolation.Compare(r.English, r.Localized)
				if m.Empty() {
					continue
				}
				problems++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tmissing=[%s]\textra=[%s]\t%s\n",
					r.ID, strings.Join(m.Missing, " "), strings.Join(m.Extra, " "), textutil.Truncate(escapeTSV(r.Localized), 60))
			}

			if problems > 0 {
				return fmt.Errorf("%d records with placeholder mismatches", problems)
			}
			log.Info().Int("records", len(records)).Msg("Placeholders consistent")
			return nil
		},
	}
}

type exportRow struct {
	ID        string `json:"id"`
	English   string `json:"english"`
	Localized string `json:"localized"`
	Done      bool   `json:"localized_ok"`
}

func exportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <category>",
		Short: "Export a merged table as TSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			records, err := loadMerged(opts.service(), args[0], opts.target, true)
			if err != nil {
				return err
			}

			if format != "json" && format != "tsv" {
				return fmt.Errorf("unknown export format %q", format)
			}

			if output == "" || output == "-" {
				err = writeExport(cmd.OutOrStdout(), format, records)
			} else {
				err = exportFile(output, format, records)
			}
			if err != nil {
				return err
			}

			log.Info().Str("format", format).Int("records", len(records)).Msg("Exported table")
			return nil
		},
	}
	cmd.Flags().String("format", "tsv", "Export format: tsv or json")
	cmd.Flags().StringP("output", "o", "-", "Output path, - for stdout")
	return cmd
}

func exportFile(path, format string, records []table.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()

	return writeExport(f, format, records)
}

func writeExport(w io.Writer, format string, records []table.Record) error {
	if format == "json" {
		return exportJSON(w, records)
	}
	return exportTSV(w, records)
}

func exportTSV(w io.Writer, records []table.Record) error {
	if _, err := fmt.Fprintln(w, "id\tenglish\tlocalized\tlocalized_ok"); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
			r.ID, escapeTSV(r.English), escapeTSV(r.Localized), localization.Classify(r)); err != nil {
			return fmt.Errorf("write TSV: %w", err)
		}
	}
	return nil
}

func exportJSON(w io.Writer, records []table.Record) error {
	rows := make([]exportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, exportRow{ID: r.ID, English: r.English, Localized: r.Localized, Done: localization.Classify(r)})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
