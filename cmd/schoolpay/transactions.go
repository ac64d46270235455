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
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/query"
	"github.com/Veraticus/schoolpay/internal/tui"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List, browse and summarize transactions",
	}

	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsSchoolCmd())
	cmd.AddCommand(transactionsBrowseCmd())
	cmd.AddCommand(transactionsStatsCmd())

	return cmd
}

func transactionsListCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions across schools",
		Example: `  # Newest first, ten per page
  schoolpay transactions list

  # Failed payments in March, largest first
  schoolpay transactions list --status failed --from 2025-03-01 --to 2025-03-31 --sort transaction_amount --order desc

  # Every page, then the second page of 25
  schoolpay transactions list --all --page-size 25 --view-page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, "", opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func transactionsSchoolCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "school <school-id>",
		Short: "List the transactions of one school",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func runList(cmd *cobra.Command, schoolID string, opts listOptions) error {
	ctx := cmd.Context()

	params, err := opts.params()
	if err != nil {
		return err
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}
	sortSpec, err := opts.sortSpec()
	if err != nil {
		return err
	}

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fetch := export.ListAll(a.client)
	if schoolID != "" {
		fetch = export.SchoolAll(a.client, schoolID)
	}

	var result fetchResult
	err = a.authed(ctx, func(ctx context.Context) error {
		var fetchErr error
		result, fetchErr = fetchRows(ctx, fetch, params, opts.all)
		return fetchErr
	})
	if err != nil {
		return err
	}

	if saveErr := a.store.SaveSnapshot(ctx, snapshotKey(schoolID, params), result.rows); saveErr != nil {
		slog.Warn("Failed to cache fetched transactions", "error", saveErr)
	}

	pageSize := opts.pageSize
	if pageSize <= 0 {
		pageSize = a.cfg.Display.PageSize
	}
	derived := query.NewSorter(query.DefaultLanguage).SortRows(query.FilterRows(result.rows, filter), sortSpec)
	page := query.Paginate(derived, opts.viewPage, pageSize)

	return renderListing(cmd.OutOrStdout(), listing{
		page:       page,
		fetched:    len(result.rows),
		pagination: result.pagination,
		filtered:   filter.Active(),
		opts:       a.renderOptions(),
	})
}

// listing is everything renderListing shows.
type listing struct {
	opts       export.Options
	page       query.Page
	pagination model.Pagination
	fetched    int
	filtered   bool
}

func renderListing(w io.Writer, l listing) error {
	if l.pagination.TotalPages > 1 {
		fmt.Fprintln(w, pterm.Info.Sprintf("Server page %d of %d (%d transactions in total)",
			l.pagination.Page, l.pagination.TotalPages, l.pagination.Total))
	}

	if l.page.Total == 0 {
		msg := "No transactions found"
		if l.filtered && l.fetched > 0 {
			msg = fmt.Sprintf("None of the %d fetched transactions match the filters", l.fetched)
		}
		fmt.Fprintln(w, pterm.Warning.Sprint(msg))
		return nil
	}

	table, err := renderTable(l.page.Rows, l.opts)
	if err != nil {
		return err
	}
	fmt.Fprint(w, table)
	fmt.Fprintln(w, cli.SubtleStyle.Render(pagerLine(l.page)))
	return nil
}

// renderTable renders rows as a pterm table.
func renderTable(rows []model.Transaction, opts export.Options) (string, error) {
	data := pterm.TableData{
		{"Date", "Order ID", "School", "Amount", "Status", "Method", "Customer"},
	}
	for i := range rows {
		tx := &rows[i]
		currency := tx.Currency
		if currency == "" {
			currency = opts.Currency
		}
		customer := ""
		if tx.Customer != nil {
			customer = tx.Customer.Name
		}
		data = append(data, []string{
			opts.Layouts.Date(tx.Date),
			format.Truncate(tx.DisplayID(), 24),
			format.OrNA(tx.SchoolID),
			format.Currency(tx.Amount(), currency),
			cli.StatusText(tx.Status),
			format.PaymentMethod(tx.Method()),
			format.Truncate(format.OrNA(customer), 24),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return out + "\n", nil
}

// pagerLine describes the shown rows and the page selector.
func pagerLine(p query.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d-%d of %d  ", p.From, p.To, p.Total)
	for _, item := range query.PageWindow(p.Page, p.TotalPages) {
		switch {
		case item.Ellipsis:
			b.WriteString("… ")
		case item.Page == p.Page:
			fmt.Fprintf(&b, "[%d] ", item.Page)
		default:
			fmt.Fprintf(&b, "%d ", item.Page)
		}
	}
	fmt.Fprintf(&b, " (%d per page)", p.Size)
	return b.String()
}

func transactionsBrowseCmd() *cobra.Command {
	var (
		school    string
		limit     int
		exportDir string
		dark      bool
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse transactions interactively",
		Long: `Opens the interactive transaction browser.

Keys: / search, s sort field, o sort direction, f status filter, n/p page,
z page size, c clear filters, r refetch, t dark mode, e export view to CSV,
? help, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !cli.StdinInteractive() {
				return fmt.Errorf("%w: browse needs a terminal; use transactions list instead", cli.ErrNotInteractive)
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			// Sign in before the browser takes over the screen.
			if err := a.ensureSession(ctx); err != nil {
				return promptError(err)
			}

			fetch := export.ListAll(a.client)
			title := "Transactions"
			if school != "" {
				fetch = export.SchoolAll(a.client, school)
				title = "Transactions of " + school
			}

			options := []tui.Option{
				tui.WithFetcher(tui.FetchFunc(fetch)),
				tui.WithExporter(csvFileExporter(exportDir, a.renderOptions())),
				tui.WithThemeStore(a.store),
				tui.WithSnapshots(snapshotStore{store: a.store, school: school}),
				tui.WithParams(model.ListParams{Page: 1, Limit: limit}),
				tui.WithTitle(title),
				tui.WithRenderOptions(a.renderOptions()),
				tui.WithPageSize(a.cfg.Display.PageSize),
				tui.WithTimeout(a.cfg.API.Timeout),
			}
			if cmd.Flags().Changed("dark") {
				options = append(options, tui.WithDarkMode(dark))
			}
			return tui.Run(ctx, options...)
		},
	}

	cmd.Flags().StringVar(&school, "school", "", "browse one school")
	cmd.Flags().IntVar(&limit, "limit", 100, "rows fetched from the server")
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "directory the e key writes CSV files to")
	cmd.Flags().BoolVar(&dark, "dark", false, "start in dark mode")

	return cmd
}

// csvFileExporter writes the browser's current view to a timestamped CSV
// file in dir and returns its path.
func csvFileExporter(dir string, opts export.Options) tui.ExportFunc {
	return func(_ context.Context, rows []model.Transaction) (string, error) {
		path := filepath.Join(dir, fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102-150405")))
		if err := writeCSVFile(path, rows, export.DefaultFields, opts); err != nil {
			return "", err
		}
		return path, nil
	}
}

// writeCSVFile exports rows to path.
func writeCSVFile(path string, rows []model.Transaction, fields []export.Field, opts export.Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return export.WriteCSV(f, rows, fields, opts)
}

func transactionsStatsCmd() *cobra.Command {
	var (
		school string
		local  bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize transactions by status",
		Long: `Shows transaction counts and amounts. With --school the server's statistics
endpoint is used; otherwise (or with --local) every page is fetched and
summarized here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var stats model.SchoolStats
			err = a.authed(ctx, func(ctx context.Context) error {
				if school != "" && !local {
					s, err := a.client.SchoolStats(ctx, school)
					if err != nil {
						return err
					}
					stats = *s
					return nil
				}

				fetch := export.ListAll(a.client)
				if school != "" {
					fetch = export.SchoolAll(a.client, school)
				}
				result, err := fetchRows(ctx, fetch, model.ListParams{Limit: 100}, true)
				if err != nil {
					return err
				}
				stats = query.Summarize(result.rows).Stats(school)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats, a.cfg.Display.Currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&school, "school", "", "school id")
	cmd.Flags().BoolVar(&local, "local", false, "compute the statistics locally even for a school")

	return cmd
}

// renderStats formats the statistics box.
func renderStats(stats model.SchoolStats, currency string) string {
	var b strings.Builder
	writeField(&b, "Transactions", fmt.Sprintf("%d", stats.TotalCount))
	writeField(&b, "Total amount", format.CurrencyValue(stats.TotalAmount, currency))
	writeField(&b, "Successful", fmt.Sprintf("%d", stats.SuccessfulCount))
	writeField(&b, "Collected", format.CurrencyValue(stats.SuccessfulAmount, currency))

	statuses := make([]model.Status, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, status)
	}
	slices.SortFunc(statuses, func(a, b model.Status) int {
		if n := stats.ByStatus[b] - stats.ByStatus[a]; n != 0 {
			return n
		}
		return strings.Compare(string(a), string(b))
	})
	if len(statuses) > 0 {
		b.WriteString("\n")
	}
	for _, status := range statuses {
		fmt.Fprintf(&b, "%s %d\n", cli.StatusBadge(status), stats.ByStatus[status])
	}

	title := "All schools"
	if stats.SchoolID != "" {
		title = "School " + stats.SchoolID
	}
	return cli.RenderBox(title, strings.TrimRight(b.String(), "\n"))
}
