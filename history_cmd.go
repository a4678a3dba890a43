package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/ttsbridge/internal/history"
)

var (
	historyLimit int
	historyClear bool

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg.History)
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			if historyClear {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			}

			jobs, err := store.List(historyLimit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), faint("No jobs yet."))
				return nil
			}

			width := 100
			if term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil { //nolint:gosec
					width = w
				}
			}
			printJobs(cmd.OutOrStdout(), jobs, width)
			return nil
		},
	}
)

var historyColumns = []struct {
	title string
	width int
}{
	{"WHEN", 16},
	{"KIND", 6},
	{"STATUS", 7},
	{"SEGS", 5},
	{"SIZE", 9},
	{"TOOK", 8},
}

// printJobs writes jobs as a table no wider than width. The input column
// takes whatever space is left.
func printJobs(w io.Writer, jobs []history.Job, width int) {
	fixed := 0
	titles := make([]string, 0, len(historyColumns)+1)
	for _, c := range historyColumns {
		fixed += c.width + 1
		titles = append(titles, runewidth.FillRight(c.title, c.width))
	}
	inputWidth := max(width-fixed, 10)
	titles = append(titles, "INPUT")
	fmt.Fprintln(w, header(strings.Join(titles, " ")))

	for _, j := range jobs {
		status := keyword("ok")
		if j.Failed() {
			status = failure("failed")
		}
		cells := []string{
			humanize.Time(j.Time),
			j.Kind,
			status,
			fmt.Sprint(j.Segments),
			humanize.Bytes(uint64(max(j.Bytes, 0))), //nolint:gosec
			j.Duration.Round(10 * time.Millisecond).String(),
		}
		row := make([]string, 0, len(cells)+1)
		for i, cell := range cells {
			row = append(row, fill(cell, historyColumns[i].width))
		}
		row = append(row, runewidth.Truncate(j.Input, inputWidth, "…"))
		fmt.Fprintln(w, strings.Join(row, " "))

		if j.Failed() {
			indent := strings.Repeat(" ", fixed)
			fmt.Fprintln(w, indent+faint(runewidth.Truncate(j.Err, inputWidth, "…")))
		}
	}
}

// fill pads cell to width, ignoring any styling escape codes.
func fill(cell string, width int) string {
	visible := lipgloss.Width(cell)
	if visible >= width {
		return cell
	}
	return cell + strings.Repeat(" ", width-visible)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "number", "n", 20, "number of jobs to show (0 shows all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded jobs")
}
