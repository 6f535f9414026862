package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"seodash/adapters/excel"
	"seodash/domain/searchdata"
	"seodash/internal/config"
	"seodash/internal/container"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "seodash-cli",
		Short:         "Load and inspect Search Console reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newIngestCmd(),
		newStatusCmd(),
		newShowCmd(),
		newSummaryCmd(),
		newTopCmd(),
		newClearCmd(),
	)
	return rootCmd
}

// withContainer opens the configured mirror and warm-starts the store for one command
func withContainer(ctx context.Context, fn func(c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	if err := c.Init(ctx); err != nil {
		return err
	}
	defer c.Shutdown(ctx)
	return fn(c)
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file]",
		Short: "Import an .xlsx or .csv export, replacing the stored records",
		Long: `Import a Google Search Console export.

Example: seodash-cli ingest ~/Downloads/Performance.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			return withContainer(cmd.Context(), func(c *container.Container) error {
				records, err := c.Ingestor.Ingest(cmd.Context(), excel.Upload{Filename: args[0], Content: f})
				if err != nil {
					return err
				}
				if err := c.Store.SetRecords(cmd.Context(), records); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", len(records), args[0])
				printCounts(cmd.OutOrStdout(), searchdata.CountByCategory(records))
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether data is loaded and how many records each category holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if !c.Store.Loaded() {
					fmt.Fprintln(cmd.OutOrStdout(), "No data loaded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d records loaded\n", c.Store.Len())
				printCounts(cmd.OutOrStdout(), c.Store.Categories())
				return nil
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	var category string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored records of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := searchdata.ParseCategory(category)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(ct *container.Container) error {
				return printRecords(cmd.OutOrStdout(), ct.Store.ByCategory(c), asJSON)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "query", "Category: query, page, country, device, search_appearance or date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print totals and averages for one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := searchdata.ParseCategory(category)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(ct *container.Container) error {
				s := searchdata.Summarize(ct.Store.ByCategory(c))
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Records\t%d\n", s.Records)
				fmt.Fprintf(w, "Clicks\t%.0f\n", s.TotalClicks)
				fmt.Fprintf(w, "Impressions\t%.0f\n", s.TotalImpressions)
				fmt.Fprintf(w, "Average CTR\t%.2f%%\n", s.AverageCTR*100)
				fmt.Fprintf(w, "Average position\t%.1f\n", s.AveragePosition)
				fmt.Fprintf(w, "Weighted position\t%.1f\n", s.WeightedPosition)
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "query", "Category to summarize")
	return cmd
}

func newTopCmd() *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the records with the most clicks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := searchdata.ParseCategory(category)
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return withContainer(cmd.Context(), func(ct *container.Container) error {
				return printRecords(cmd.OutOrStdout(), searchdata.TopByClicks(ct.Store.Records(), c, limit), false)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "query", "Category to rank")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to print")
	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				c.Store.Clear(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Data cleared")
				return nil
			})
		},
	}
}

func printCounts(out io.Writer, counts map[searchdata.Category]int) {
	for _, c := range searchdata.Categories {
		if n := counts[c]; n > 0 {
			fmt.Fprintf(out, "  %-18s %d\n", c, n)
		}
	}
}

func printRecords(out io.Writer, records []searchdata.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tCLICKS\tIMPRESSIONS\tCTR\tPOSITION\tDATE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.2f%%\t%.1f\t%s\n", r.Key, r.Clicks, r.Impressions, r.CTR*100, r.Position, r.Date)
	}
	return w.Flush()
}
