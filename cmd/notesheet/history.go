// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notesheet/internal/history"
	"github.com/pdiddy/notesheet/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or export past conversions",
	Long: `History lists recent conversion runs, newest first, from the run journal
in the history directory. Use --export to write every matching run as YAML or
JSON.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", history.DefaultLimit, "maximum number of runs to list")
	historyCmd.Flags().String("status", "", "only runs with this status: succeeded, failed, cancelled, or skipped")
	historyCmd.Flags().Bool("json", false, "print the listed runs as JSON")
	historyCmd.Flags().String("export", "", "export all matching runs: yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.HistoryDir)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	opts := history.QueryOptions{Limit: limit, Status: types.RunStatus(status)}
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	export, _ := cmd.Flags().GetString("export")
	switch strings.ToLower(export) {
	case "":
	case "yaml", "yml":
		opts.Limit = 0
		return store.ExportYAML(ctx, out, opts)
	case "json":
		opts.Limit = 0
		return store.ExportJSON(ctx, out, opts)
	default:
		return fmt.Errorf("unknown export format %q: use yaml or json", export)
	}

	runs, err := store.List(ctx, opts)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(out, runs, jsonOutput)
}

func formatHistory(w io.Writer, runs []types.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-19s  %-9s  %-7s  %-40s  %-9s  %s\n",
		"Started", "Status", "Rule", "Source", "Pages", "Duration")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		source := r.Source
		if len(source) > 40 {
			source = "..." + source[len(source)-37:]
		}
		fmt.Fprintf(w, "%-19s  %-9s  %-7s  %-40s  %-9s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Rule, source,
			fmt.Sprintf("%d->%d", r.SourcePages, r.OutputPages), r.Duration.Round(time.Millisecond))
		if r.Error != "" {
			fmt.Fprintf(w, "    %s\n", r.Error)
		}
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}
