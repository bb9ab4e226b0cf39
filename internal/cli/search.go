package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/tapedeck/internal/core/config"
	"github.com/vietddude/tapedeck/internal/infra/archive"
)

var searchRows int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the archive for recordings",
	Args:  cobra.ExactArgs(1),
	Run:   runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchRows, "rows", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	client := archive.NewClient(archive.Config{
		BaseURL:           cfg.Archive.BaseURL,
		RequestsPerSecond: cfg.Archive.RequestsPerSecond,
		MaxRetries:        cfg.Archive.MaxRetries,
		Timeout:           config.Seconds(cfg.Archive.Timeout),
		BaseDelay:         config.Seconds(cfg.Retry.BaseDelay),
		MaxDelay:          config.Seconds(cfg.Retry.MaxDelay),
	}, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fields := []string{"identifier", "title", "date", "venue"}
	result, err := client.Search(ctx, args[0], fields, searchRows)
	if err != nil {
		slog.Error("Search failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%d results\n", result.Response.NumFound)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "IDENTIFIER\tDATE\tTITLE")
	for _, doc := range result.Response.Docs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
			doc.Identifier(), doc.Field("date"), doc.Field("title"))
	}
	_ = w.Flush()
}
