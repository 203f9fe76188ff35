package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatherly/sentinel/internal/control"
	"github.com/gatherly/sentinel/internal/core/version"
)

var cleanNow bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Arm a force-clean for the next load, or remediate immediately",
	Run:   runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanNow, "now", false, "run the remediation immediately instead of arming it")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewApp(control.FromAppConfig(cfg, version.Version))
	if err != nil {
		slog.Error("Failed to initialize Sentinel", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer app.Stop(ctx)

	guard := app.Guard()
	if err := guard.ForceCleanOnNextLoad(ctx); err != nil {
		slog.Error("Failed to arm force-clean flag", "error", err)
		os.Exit(1)
	}

	if !cleanNow {
		fmt.Println("Force-clean armed; the next load will remediate")
		return
	}

	cleaned, err := guard.AutoDetectAndClean(ctx)
	if err != nil {
		slog.Error("Remediation failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Remediation ran: %v\n", cleaned)
}
