package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/config"
	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/query"
	"github.com/Veraticus/schoolpay/internal/sheets"
)

const interruptHint = "Nothing was exported."

// exportOptions are the flags shared by the csv and sheets exports.
type exportOptions struct {
	list         listOptions
	fields       string
	fromSnapshot bool
}

func (o *exportOptions) register(cmd *cobra.Command) {
	o.list.register(cmd)
	// Exports cover every server page unless --all=false.
	o.list.all = true
	cmd.Flags().Lookup("all").DefValue = "true"

	cmd.Flags().StringVar(&o.fields, "fields", "", "comma separated field paths to export (default: all standard columns)")
	cmd.Flags().BoolVar(&o.fromSnapshot, "from-snapshot", false, "export the last fetched result set instead of calling the API")
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions to CSV or Google Sheets",
	}

	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportSheetsCmd())
	cmd.AddCommand(exportSchoolCmd())

	return cmd
}

func exportCSVCmd() *cobra.Command {
	var (
		opts   exportOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export the filtered, sorted transactions as CSV",
		Example: `  schoolpay export csv --status success --output paid.csv
  schoolpay export csv --from-snapshot --fields custom_order_id,transaction_amount,status
  schoolpay export csv --school SCH-1 --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := exportFields(opts.fields)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), interruptHint)
			defer handler.Stop()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := exportRows(ctx, a, opts)
			if err != nil {
				return err
			}

			if output == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), rows, fields, a.renderOptions())
			}
			if output == "" {
				output = fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102-150405"))
			}
			if err := writeCSVFile(config.ExpandPath(output), rows, fields, a.renderOptions()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(rows), output)))
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: transactions-<time>.csv)`)

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Export the filtered, sorted transactions to Google Sheets",
		Long: `Writes the transactions to a Google Sheets spreadsheet, replacing the
contents of its transactions sheet.

Authenticate with a service account (sheets.service_account_path) or OAuth2
(sheets.client_id, sheets.client_secret and sheets.refresh_token or
sheets.token_file). Set sheets.spreadsheet_id to reuse a spreadsheet;
otherwise one named sheets.spreadsheet_name is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := exportFields(opts.fields)
			if err != nil {
				return err
			}
			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("google sheets is not configured: %w", err)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), interruptHint)
			defer handler.Stop()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := exportRows(ctx, a, opts)
			if err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
			if err != nil {
				return err
			}
			if err := export.Write(ctx, writer, rows, fields, a.renderOptions()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions", len(rows))))
			fmt.Fprintln(cmd.OutOrStdout(), writer.SpreadsheetURL())
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

func exportSchoolCmd() *cobra.Command {
	var (
		opts   listOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "school <school-id>",
		Short: "Download the server-rendered CSV export of a school",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), interruptHint)
			defer handler.Stop()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var data []byte
			err = a.authed(ctx, func(ctx context.Context) error {
				var downloadErr error
				data, downloadErr = a.client.ExportSchoolCSV(ctx, args[0], params)
				return downloadErr
			})
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = fmt.Sprintf("transactions-%s.csv", args[0])
			}
			if err := os.WriteFile(config.ExpandPath(output), data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Saved server export to "+output))
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: transactions-<school-id>.csv)`)

	return cmd
}

func exportFields(spec string) ([]export.Field, error) {
	if spec == "" {
		return export.DefaultFields, nil
	}
	return export.ParseFields(spec)
}

// exportRows fetches (or loads from the snapshot cache) and derives the rows
// to export: filtered and sorted, never paginated.
func exportRows(ctx context.Context, a *app, opts exportOptions) ([]model.Transaction, error) {
	params, err := opts.list.params()
	if err != nil {
		return nil, err
	}
	filter, err := opts.list.filter()
	if err != nil {
		return nil, err
	}
	sortSpec, err := opts.list.sortSpec()
	if err != nil {
		return nil, err
	}

	rows, err := sourceRows(ctx, a, opts, params)
	if err != nil {
		return nil, err
	}

	derived := query.NewSorter(query.DefaultLanguage).SortRows(query.FilterRows(rows, filter), sortSpec)
	if len(derived) == 0 {
		slog.Warn("No transactions match the filters, exporting the header only")
	}
	return derived, nil
}

func sourceRows(ctx context.Context, a *app, opts exportOptions, params model.ListParams) ([]model.Transaction, error) {
	if opts.fromSnapshot {
		return loadSnapshot(ctx, a.store, snapshotKey("", params))
	}

	var result fetchResult
	err := a.authed(ctx, func(ctx context.Context) error {
		var fetchErr error
		result, fetchErr = fetchRows(ctx, export.ListAll(a.client), params, opts.list.all)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if saveErr := a.store.SaveSnapshot(ctx, snapshotKey("", params), result.rows); saveErr != nil {
		slog.Warn("Failed to cache fetched transactions", "error", saveErr)
	}
	return result.rows, nil
}
