package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cfgFile = ""
	root := &cobra.Command{
		Use:   "payrollcalc",
		Short: "Indonesian payroll calculator",
		Long: `payrollcalc computes BPJS contributions, PPh 21 withholding and net pay
without a database. It uses the same engine as the payroll server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config with default bpjs rates and ptkp_status")
	root.AddCommand(calculateCmd())
	root.AddCommand(taxCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
