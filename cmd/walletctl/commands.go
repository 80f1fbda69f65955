package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/itswisdomagain/xmrwallet/asset"
	"github.com/itswisdomagain/xmrwallet/engine"
	"github.com/itswisdomagain/xmrwallet/wallet"
	"github.com/spf13/cobra"
)

const defaultSyncTimeout = 2 * time.Minute

func createCmd(a *app) *cobra.Command {
	var mnemonic string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet",
		Long:  `Creates a wallet from a fresh 24-word seed, or from --seed if given, and scans from the current chain tip.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *asset.Seed
			var err error
			if mnemonic != "" {
				seed, err = asset.SeedFromWords(asset.SplitMnemonic(mnemonic))
			} else {
				seed, err = asset.GenerateSeed()
			}
			if err != nil {
				return err
			}
			if err := a.ctrl.Create(cmd.Context(), seed.Words, seed.Type); err != nil {
				return err
			}

			fmt.Println("IMPORTANT: Write down your seed and keep it safe!")
			fmt.Println("Seed:", seed.Mnemonic())
			fmt.Println("Receive address:", a.ctrl.State().ReceiveAddress)
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "seed", "", "Create from this unused seed instead of generating one")
	return cmd
}

func restoreCmd(a *app) *cobra.Command {
	var mnemonic string
	cmd := &cobra.Command{
		Use:   "restore [height|YYYY-MM-DD]",
		Short: "Restore a wallet from its seed",
		Long:  `Restores a wallet from a 25-word or 24-word seed, scanning from the given block height or date. Scans from genesis if neither is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mnemonic == "" {
				return fmt.Errorf("provide the seed with --seed")
			}
			var restorePoint string
			if len(args) > 0 {
				restorePoint = args[0]
			}
			if err := a.ctrl.Restore(cmd.Context(), asset.SplitMnemonic(mnemonic), restorePoint); err != nil {
				return err
			}
			height, date := a.ctrl.RestoreHeight()
			fmt.Printf("Wallet restored. Scanning from block %d (%s).\n", height, date.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "seed", "", "Seed words, space separated")
	return cmd
}

func unlockCmd(a *app) *cobra.Command {
	var watch time.Duration
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Start the saved wallet and watch it sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.UnlockAndResume(cmd.Context()); err != nil {
				return err
			}
			return watchState(cmd, a, watch)
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", defaultSyncTimeout, "Stop watching after this long")
	return cmd
}

// watchState prints each sync state change until the wallet is synced or
// timeout elapses.
func watchState(cmd *cobra.Command, a *app, timeout time.Duration) error {
	var last string
	deadline := time.After(timeout)
	states := a.ctrl.Subscribe(cmd.Context())
	for {
		select {
		case state, ok := <-states:
			if !ok {
				return cmd.Context().Err()
			}
			if s := state.SyncState.String(); s != last {
				last = s
				fmt.Println(s)
			}
			if state.Error != "" {
				return fmt.Errorf("%s", state.Error)
			}
			if _, synced := state.SyncState.(engine.Synced); synced {
				fmt.Printf("Balance: %d (%d unlocked)\n", state.Balance.All, state.Balance.Unlocked)
				return nil
			}
		case <-deadline:
			fmt.Println("Still syncing.")
			return nil
		}
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the wallet state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := a.ctrl.State()
			status := map[string]any{
				"status":    state.Status.String(),
				"hasWallet": state.HasWallet,
				"syncState": state.SyncState.String(),
			}
			if state.HasWallet {
				id, err := a.ctrl.Identity()
				if err != nil {
					return err
				}
				height, date := a.ctrl.RestoreHeight()
				status["walletId"] = id.WalletID
				status["node"] = id.Node
				status["trustNode"] = id.TrustNode
				status["restoreHeight"] = height
				status["restoreDate"] = date.Format(time.DateOnly)
			}
			return printJSON(status)
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Show the wallet seed for backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := a.ctrl.Seed()
			if err != nil {
				return err
			}
			fmt.Printf("%s seed: %s\n", seed.Type, seed.Mnemonic())
			return nil
		},
	}
}

func changeNodeCmd(a *app) *cobra.Command {
	var trust bool
	cmd := &cobra.Command{
		Use:   "change-node <host:port>",
		Short: "Switch the node the wallet syncs from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.ChangeNode(cmd.Context(), args[0], trust); err != nil {
				return err
			}
			fmt.Println("Node changed to", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&trust, "trust", false, "Trust the node")
	return cmd
}

func resetSyncCmd(a *app) *cobra.Command {
	var fromGenesis bool
	cmd := &cobra.Command{
		Use:   "reset-sync",
		Short: "Discard synced data and scan again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.ResetSync(cmd.Context(), !fromGenesis); err != nil {
				return err
			}
			height, _ := a.ctrl.RestoreHeight()
			fmt.Println("Rescanning from block", height)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromGenesis, "genesis", false, "Forget the saved restore height and scan from genesis")
	return cmd
}

func removeCmd(a *app) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete the wallet, its seed and its settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("this deletes the seed; pass --yes if it is backed up")
			}
			if err := a.ctrl.Remove(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Wallet removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm removal")
	return cmd
}

func sendCmd(a *app) *cobra.Command {
	var memo string
	var syncTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <address> <amount>",
		Short: "Send atomic units to an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if err := a.resume(cmd.Context(), syncTimeout); err != nil {
				return err
			}
			tx, err := a.ctrl.Send(cmd.Context(), amount, args[0], memo)
			if err != nil {
				return err
			}
			return printJSON(tx)
		},
	}
	cmd.Flags().StringVar(&memo, "memo", "", "Note saved with the transaction")
	cmd.Flags().DurationVar(&syncTimeout, "sync-timeout", defaultSyncTimeout, "How long to wait for the wallet to sync")
	return cmd
}

func feeCmd(a *app) *cobra.Command {
	var priority uint8
	var syncTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "fee <address> <amount>",
		Short: "Estimate the fee for a send",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if priority > uint8(engine.FeePriorityHigh) {
				return fmt.Errorf("priority must be between 0 and %d", engine.FeePriorityHigh)
			}
			if err := a.resume(cmd.Context(), syncTimeout); err != nil {
				return err
			}
			fee, err := a.ctrl.EstimateFee(cmd.Context(), amount, args[0], engine.FeePriority(priority))
			if err != nil {
				return err
			}
			fmt.Printf("Fee (%s priority): %d\n", engine.FeePriority(priority), fee)
			return nil
		},
	}
	cmd.Flags().Uint8Var(&priority, "priority", 0, "0 default, 1 low, 2 medium, 3 high")
	cmd.Flags().DurationVar(&syncTimeout, "sync-timeout", defaultSyncTimeout, "How long to wait for the wallet to sync")
	return cmd
}

func historyCmd(a *app) *cobra.Command {
	var (
		direction     string
		pending       bool
		minHeight     uint64
		offset, limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List indexed transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := wallet.HistoryFilter{PendingOnly: pending, MinHeight: minHeight}
			switch direction {
			case "":
			case engine.DirectionIn.String():
				dir := engine.DirectionIn
				filter.Direction = &dir
			case engine.DirectionOut.String():
				dir := engine.DirectionOut
				filter.Direction = &dir
			default:
				return fmt.Errorf("direction must be in or out")
			}

			txs, err := a.ctrl.History(filter, offset, limit)
			if err != nil {
				return err
			}
			total, err := a.ctrl.CountHistory(filter)
			if err != nil {
				return err
			}
			for _, tx := range txs {
				fmt.Printf("%s  %-3s %15d  fee %d  height %d  %s\n", tx.Time().Format(time.DateTime),
					tx.Direction, tx.Amount, tx.Fee, tx.Height, tx.TxID)
			}
			fmt.Printf("%d of %d transactions\n", len(txs), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "", "Only in or out transactions")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only pending transactions")
	cmd.Flags().Uint64Var(&minHeight, "min-height", 0, "Only transactions at or above this height")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many transactions")
	cmd.Flags().IntVar(&limit, "limit", 20, "List at most this many transactions")
	return cmd
}

func subaddressCmd(a *app) *cobra.Command {
	var syncTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "subaddress",
		Short: "List or create subaddresses",
	}
	cmd.PersistentFlags().DurationVar(&syncTimeout, "sync-timeout", defaultSyncTimeout, "How long to wait for the wallet to sync")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List subaddresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context(), syncTimeout); err != nil {
				return err
			}
			subaddrs, err := a.ctrl.Subaddresses(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(subaddrs)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "new [label]",
		Short: "Create a subaddress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			if len(args) > 0 {
				label = args[0]
			}
			if err := a.resume(cmd.Context(), syncTimeout); err != nil {
				return err
			}
			subaddr, err := a.ctrl.CreateSubaddress(cmd.Context(), label)
			if err != nil {
				return err
			}
			return printJSON(subaddr)
		},
	})
	return cmd
}

func nodesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage saved custom nodes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, node := range a.ctrl.CustomNodes() {
				fmt.Println(node)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <host:port>",
		Short: "Save a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ctrl.AddCustomNode(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <host:port>",
		Short: "Forget a saved node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ctrl.RemoveCustomNode(args[0])
		},
	})
	return cmd
}

func restoreHeightCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore-height",
		Short: "Inspect or change the height resyncs start from",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <height>",
		Short: "Scan from this height on the next reset-sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[0], err)
			}
			return a.ctrl.SetRestoreHeightOverride(height)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "date <height>",
		Short: "Show the date the chain reached a height",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[0], err)
			}
			fmt.Println(a.ctrl.DateForHeight(height).Format(time.DateOnly))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "height <YYYY-MM-DD>",
		Short: "Show the height the chain had at a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return err
			}
			height, err := a.ctrl.HeightForDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			fmt.Println(height)
			return nil
		},
	})
	return cmd
}
