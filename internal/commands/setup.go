package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/pin"
)

func newSetupCommand(a *app) *cobra.Command {
	var code, parentPIN string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run the first-time setup: currency and parent PIN",
		Long: `Run the first-time setup. Without --pin an interactive form asks for the
currency and the parent PIN.`,
		Args: cobra.NoArgs,
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if parentPIN == "" {
				if err := setupForm(cmd, &code, &parentPIN); err != nil {
					return err
				}
			}
			return runSetup(ctx, cmd, a, code, parentPIN)
		}),
	}

	cmd.Flags().StringVar(&code, "currency", string(model.CurrencyINR), "display currency: INR or USD")
	cmd.Flags().StringVar(&parentPIN, "pin", "", "4-digit parent PIN")

	return cmd
}

func setupForm(cmd *cobra.Command, code, parentPIN *string) error {
	var options []huh.Option[string]
	for _, cur := range currency.Supported() {
		label := fmt.Sprintf("%s %s", currency.Symbol(cur), currency.Name(cur))
		options = append(options, huh.NewOption(label, string(cur)))
	}
	var confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency").
				Options(options...).
				Value(code),
			huh.NewInput().
				Title("Parent PIN").
				Description("4 digits, needed for every parent action").
				EchoMode(huh.EchoModePassword).
				Validate(validatePIN).
				Value(parentPIN),
			huh.NewInput().
				Title("Confirm PIN").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s != *parentPIN {
						return errors.New("PINs do not match")
					}
					return nil
				}).
				Value(&confirm),
		),
	).WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("setup cancelled")
		}
		return fmt.Errorf("setup form: %w", err)
	}
	return nil
}

func validatePIN(s string) error {
	if !pin.ValidateFormat(pin.FormatInput(s)) {
		return errors.New("PIN must be exactly 4 digits")
	}
	return nil
}

func runSetup(ctx context.Context, cmd *cobra.Command, a *app, code, parentPIN string) error {
	cur, err := currency.Parse(code)
	if err != nil {
		return err
	}
	if err := a.sessions.Setup(ctx, cur, pin.FormatInput(parentPIN)); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Setup complete. Log in with 'piggybank login parent --pin <PIN>'.")
	if a.cfg.Security.RecoveryCode != "" {
		fmt.Fprintf(out, "If you forget the PIN, the recovery code %s also works.\n", a.cfg.Security.RecoveryCode)
	}
	return nil
}
