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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the persisted corruption markers",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewApp(control.FromAppConfig(cfg, version.Version))
	if err != nil {
		slog.Error("Failed to initialize Sentinel", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer app.Stop(ctx)

	markers := app.Guard().Markers()

	count, err := markers.CorruptionCount(ctx)
	if err != nil {
		slog.Error("Failed to read corruption count", "error", err)
		os.Exit(1)
	}
	forced, _ := markers.ForceClean(ctx)
	storedVersion, hasVersion, _ := markers.AppVersion(ctx)
	lastLoad, hasLoad, _ := markers.LastSuccessfulLoad(ctx)

	fmt.Printf("running version:      %s\n", version.Version)
	if hasVersion {
		fmt.Printf("stored version:       %s\n", storedVersion)
	} else {
		fmt.Printf("stored version:       (none)\n")
	}
	fmt.Printf("corruption count:     %d\n", count)
	fmt.Printf("force-clean armed:    %v\n", forced)
	if hasLoad {
		fmt.Printf("last successful load: %s\n", lastLoad.Format(time.RFC3339))
	} else {
		fmt.Printf("last successful load: (never)\n")
	}
}
