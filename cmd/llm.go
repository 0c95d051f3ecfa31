package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mindsync-ai/mindsync/internal/llm"
	"github.com/mindsync-ai/mindsync/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var purposes = []string{llm.PurposeAnalysis, llm.PurposeQuiz, llm.PurposeChat, llm.PurposeTranscription}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the model calls made by the backend",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")
		if purpose != "" && !slices.Contains(purposes, purpose) {
			return fmt.Errorf("unknown purpose %q (want one of %s)", purpose, strings.Join(purposes, ", "))
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No model calls recorded.")
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			status := color.GreenString("ok")
			if !e.Success {
				status = color.RedString("failed")
			}
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.Timestamp.Local().Format(timeLayout),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				(time.Duration(e.LatencyMs) * time.Millisecond).String(),
				status,
			})
		}
		printTable(out, []string{"ID", "Time", "Purpose", "Model", "In", "Out", "Latency", "Status"}, rows, false)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no model call with ID %d", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		field := func(name, value string) {
			bold.Fprintf(out, "%-9s", name)
			fmt.Fprintln(out, value)
		}
		field("ID", strconv.FormatInt(e.ID, 10))
		field("Time", e.Timestamp.Local().Format(timeLayout))
		field("Provider", e.Provider)
		field("Model", e.Model)
		field("Purpose", e.Purpose)
		field("Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens))
		field("Latency", (time.Duration(e.LatencyMs) * time.Millisecond).String())
		if e.Success {
			field("Status", color.GreenString("ok"))
		} else {
			field("Status", color.RedString("failed: %s", e.ErrorMessage))
		}

		printBody(out, "Request", e.RequestBody)
		printBody(out, "Response", e.ResponseBody)
		return nil
	},
}

func printBody(w io.Writer, title, body string) {
	fmt.Fprintf(w, "\n%s\n%s\n", color.New(color.Bold, color.Underline).Sprint(title), strings.Repeat("─", 60))
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(w, body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No model calls recorded.")
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		color.New(color.Bold).Fprintln(out, "By purpose")
		printTable(out, []string{"Purpose", "Calls", "Failed", "Input", "Output", "Avg latency"}, purposeRows(byPurpose), true)

		fmt.Fprintln(out)
		color.New(color.Bold).Fprintln(out, "Estimated cost (USD)")
		rows, unpriced := costRows(byModel)
		printTable(out, []string{"Model", "Calls", "Input", "Output", "Cost"}, rows, true)
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "No pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

var llmPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded model calls older than --older-than",
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		n, err := s.EventRepo().PruneLLMEvents(cmd.Context(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d model call(s).\n", n)
		return nil
	},
}

// purposeRows renders usage per purpose followed by a totals row.
func purposeRows(usage []store.UsageRow) [][]string {
	var calls, failed, in, outTok int
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		rows = append(rows, []string{
			u.Key,
			strconv.Itoa(u.Requests),
			strconv.Itoa(u.Failures),
			strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens),
			(time.Duration(u.AvgLatencyMs) * time.Millisecond).String(),
		})
		calls += u.Requests
		failed += u.Failures
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	return append(rows, []string{"Total", strconv.Itoa(calls), strconv.Itoa(failed), strconv.Itoa(in), strconv.Itoa(outTok), ""})
}

// costRows prices usage per model. Models without pricing show "?" and
// are returned so the caller can flag the total as partial.
func costRows(usage []store.UsageRow) ([][]string, []string) {
	var total float64
	var unpriced []string
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		cost := "?"
		if c := llm.LookupCost(u.Key); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, u.Key)
		}
		rows = append(rows, []string{
			truncate(u.Key, 32),
			strconv.Itoa(u.Requests),
			strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens),
			cost,
		})
	}
	label := "Total"
	if len(unpriced) > 0 {
		label = "Total (partial)"
	}
	return append(rows, []string{label, "", "", "", formatCost(total)}), unpriced
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose ("+strings.Join(purposes, ", ")+")")
	llmListCmd.Flags().Duration("since", 0, "Only show calls newer than this (e.g. 24h)")

	llmPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Age of the oldest call to keep")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmPruneCmd)
}
