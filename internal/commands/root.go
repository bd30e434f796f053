package commands

import (
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(clockwork.NewRealClock())
}

func newRootCommand(clock clockwork.Clock) *cobra.Command {
	a := &app{clock: clock}

	rootCmd := &cobra.Command{
		Use:     "piggybank",
		Short:   "A virtual piggy bank for kids, run by their parents",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.homeFlag, "home", "", "data directory (default $PIGGYBANK_HOME or ~/.local/share/piggybank)")

	rootCmd.AddCommand(
		newInitCommand(a),
		newSetupCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newStatusCommand(a),
		newChildCommand(a),
		newMoneyCommand(a),
		newCategoryCommand(a),
		newGoalCommand(a),
		newSavingsCommand(a),
		newWithdrawalCommand(a),
		newNotificationsCommand(a),
		newAllowanceCommand(a),
		newSettingsCommand(a),
		newHistoryCommand(a),
		newCheckCommand(a),
		newResetCommand(a),
	)

	return rootCmd
}
