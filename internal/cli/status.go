package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/tapedeck/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity status of a running daemon",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("http://localhost:%d/health/detailed", cfg.Server.Port)

	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Daemon not reachable", "url", url, "error", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var report status.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		slog.Error("Failed to decode status", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Status:  %s\n", report.Status)
	fmt.Printf("Network: %s\n", report.Detail)
	if !report.LastCheck.IsZero() {
		fmt.Printf("Checked: %s\n", report.LastCheck.Format(time.RFC3339))
	}
}
