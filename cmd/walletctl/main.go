// walletctl drives the wallet lifecycle controller from the command line.
// It opens the wallet described by the config file, runs one command and
// closes it again.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile string
	network    string
	dataDir    string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := new(app)
	err := rootCmd(a).ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "walletctl",
		Short:         "Single wallet lifecycle control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile(), "Path to config file")
	cmd.PersistentFlags().StringVar(&network, "network", "", "Network override: mainnet, testnet or stagenet")
	cmd.PersistentFlags().StringVar(&dataDir, "datadir", "", "Data directory override")
	cmd.PersistentFlags().StringVar(&logLevel, "loglevel", "", "Log level override")

	cmd.AddCommand(
		createCmd(a),
		restoreCmd(a),
		unlockCmd(a),
		statusCmd(a),
		seedCmd(a),
		changeNodeCmd(a),
		resetSyncCmd(a),
		removeCmd(a),
		sendCmd(a),
		feeCmd(a),
		historyCmd(a),
		subaddressCmd(a),
		nodesCmd(a),
		restoreHeightCmd(a),
	)
	return cmd
}
