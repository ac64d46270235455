package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/Veraticus/schoolpay/internal/model"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id>",
		Short: "Check the status of a transaction",
		Long:  `Looks up a transaction by its custom order id or collect request id.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orderID := strings.TrimSpace(args[0])
			if orderID == "" {
				return fmt.Errorf("%w: order id is required", model.ErrInvalidInput)
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var tx *model.Transaction
			err = a.authed(ctx, func(ctx context.Context) error {
				var lookupErr error
				tx, lookupErr = a.client.TransactionStatus(ctx, orderID)
				return lookupErr
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(tx, a.renderOptions()))
			return nil
		},
	}
}

// renderStatus shows one transaction with its coloured status badge.
func renderStatus(tx *model.Transaction, opts export.Options) string {
	currency := tx.Currency
	if currency == "" {
		currency = opts.Currency
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", cli.StatusBadge(tx.Status))
	writeField(&b, "Collect ID", tx.CollectID)
	writeField(&b, "School", tx.SchoolID)
	writeField(&b, "Gateway", tx.Gateway)
	writeField(&b, "Order amount", format.Currency(tx.OrderAmount, currency))
	writeField(&b, "Paid amount", format.Currency(tx.TransactionAmount, currency))
	writeField(&b, "Method", format.PaymentMethod(tx.Method()))
	writeField(&b, "Paid at", opts.Layouts.DateTime(tx.PaymentTime))
	writeField(&b, "Reference", tx.Reference)
	if tx.CanRefund() {
		writeField(&b, "Refundable", "yes")
	}

	return cli.RenderBox("Order "+tx.DisplayID(), strings.TrimRight(b.String(), "\n"))
}
