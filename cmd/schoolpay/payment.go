package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/config"
	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/Veraticus/schoolpay/internal/model"
)

func paymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Create payment links and relay gateway callbacks",
	}

	cmd.AddCommand(paymentCreateCmd())
	cmd.AddCommand(paymentCallbackCmd())

	return cmd
}

func paymentCreateCmd() *cobra.Command {
	var (
		req    model.PaymentRequest
		amount string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collect request and print its payment link",
		Example: `  schoolpay payment create --school SCH-1 --student-name "Asha Rao" --student-id STU-42 --amount 1500 --gateway razorpay`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil {
				return fmt.Errorf("%w: --amount %q is not a number", model.ErrInvalidInput, amount)
			}
			req.Amount = parsed
			if err := req.Validate(); err != nil {
				return err
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			estimate := format.EstimateFees(req.Amount, req.Gateway, a.cfg.Fees)
			fmt.Fprintln(cmd.OutOrStdout(), renderFeeEstimate(estimate, a.cfg.Display.Currency))

			if !yes {
				ok, err := a.prompter.Confirm(ctx, "Create this payment?", true)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			var link *model.PaymentLink
			err = a.authed(ctx, func(ctx context.Context) error {
				var createErr error
				link, createErr = a.client.CreatePayment(ctx, req)
				return createErr
			})
			if err != nil {
				return err
			}

			var b strings.Builder
			writeField(&b, "Collect request", link.CollectRequestID)
			if link.CustomOrderID != "" {
				writeField(&b, "Order ID", link.CustomOrderID)
			}
			writeField(&b, "Payment link", link.PaymentURL)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Payment created", strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.SchoolID, "school", "", "school id (required)")
	f.StringVar(&req.TrusteeID, "trustee", "", "trustee id")
	f.StringVar(&req.Gateway, "gateway", "", "payment gateway")
	f.StringVar(&req.CallbackURL, "callback-url", "", "URL the gateway redirects to after payment")
	f.StringVar(&req.Student.Name, "student-name", "", "student name (required)")
	f.StringVar(&req.Student.ID, "student-id", "", "student id (required)")
	f.StringVar(&req.Student.Email, "student-email", "", "student email")
	f.StringVar(&amount, "amount", "", "amount to collect (required)")
	f.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

// renderFeeEstimate shows the expected gateway fee and payout.
func renderFeeEstimate(e format.FeeEstimate, currency string) string {
	var b strings.Builder
	writeField(&b, "Amount", format.CurrencyValue(e.Amount, currency))
	writeField(&b, "Gateway fee", format.CurrencyValue(e.Fee, currency))
	writeField(&b, "School receives", format.CurrencyValue(e.Net, currency))
	return cli.RenderBox("Estimate", strings.TrimRight(b.String(), "\n"))
}

func paymentCallbackCmd() *cobra.Command {
	var (
		file     string
		payload  model.PaymentCallback
		ordered  string
		received string
	)
	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Relay a gateway callback to the API",
		Long: `Forwards a gateway payment notification to the API, either read from a
JSON file (--file, "-" for stdin) or built from flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if file != "" {
				if err := readCallback(cmd, file, &payload); err != nil {
					return err
				}
			} else {
				var err error
				if payload.OrderInfo.OrderAmount, err = optionalDecimal("order-amount", ordered); err != nil {
					return err
				}
				if payload.OrderInfo.TransactionAmount, err = optionalDecimal("transaction-amount", received); err != nil {
					return err
				}
			}
			if err := payload.Validate(); err != nil {
				return err
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.authed(ctx, func(ctx context.Context) error {
				return a.client.PaymentCallback(ctx, payload)
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Callback for "+payload.OrderInfo.OrderID+" accepted"))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", `JSON payload file, "-" for stdin`)
	f.IntVar(&payload.Status, "code", 200, "gateway status code")
	f.StringVar(&payload.OrderInfo.OrderID, "order-id", "", "order id")
	f.StringVar(&payload.OrderInfo.Status, "status", "", "payment status")
	f.StringVar(&payload.OrderInfo.Gateway, "gateway", "", "gateway name")
	f.StringVar(&payload.OrderInfo.PaymentMode, "payment-mode", "", "payment mode")
	f.StringVar(&payload.OrderInfo.BankReference, "bank-reference", "", "bank reference")
	f.StringVar(&payload.OrderInfo.PaymentMessage, "message", "", "payment message")
	f.StringVar(&payload.OrderInfo.PaymentTime, "payment-time", "", "payment time")
	f.StringVar(&ordered, "order-amount", "", "ordered amount")
	f.StringVar(&received, "transaction-amount", "", "settled amount")

	return cmd
}

func readCallback(cmd *cobra.Command, file string, payload *model.PaymentCallback) error {
	in := cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(config.ExpandPath(file))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	if err := json.NewDecoder(in).Decode(payload); err != nil {
		return fmt.Errorf("%w: callback payload: %w", model.ErrInvalidInput, err)
	}
	return nil
}

func optionalDecimal(flag, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s %q is not a number", model.ErrInvalidInput, flag, value)
	}
	return d, nil
}
