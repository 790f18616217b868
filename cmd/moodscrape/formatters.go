package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/moodscrape/article"
	"github.com/pevans/moodscrape/history"
)

const timeFormat = "2006-01-02 15:04"

// newTable returns a table writer rendering to w in the house style.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// renderRuns prints recorded runs, newest first.
func renderRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "Started", "Location", "Found", "Written", "Failed", "Status"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID.String()[:8],
			r.StartedAt.Local().Format(timeFormat),
			truncate(r.Location, 50),
			r.Discovered,
			r.Extracted,
			r.Failed,
			r.Status,
		})
	}
	t.AppendFooter(table.Row{"Total", len(runs)})
	t.Render()
}

// renderRunDetail prints one run and the articles it failed to extract.
func renderRunDetail(w io.Writer, run *history.Run, failures []history.Failure) {
	fmt.Fprintf(w, "Run:        %s\n", run.RunID)
	fmt.Fprintf(w, "Status:     %s\n", run.Status)
	fmt.Fprintf(w, "Location:   %s\n", run.Location)
	fmt.Fprintf(w, "Output:     %s\n", run.OutputPath)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Local().Format(timeFormat))
	fmt.Fprintf(w, "Duration:   %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "Discovered: %d\n", run.Discovered)
	fmt.Fprintf(w, "Extracted:  %d (%d incomplete)\n", run.Extracted, run.Incomplete)
	if run.Error != nil {
		fmt.Fprintf(w, "Error:      %s\n", *run.Error)
	}

	if len(failures) == 0 {
		return
	}

	fmt.Fprintln(w)
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "URL", "Error"})
	for i, f := range failures {
		t.AppendRow(table.Row{i + 1, f.URL, truncate(f.Error, 80)})
	}
	t.Render()
}

// articleStats summarizes an output file.
type articleStats struct {
	Articles      int
	WithTitle     int
	WithContent   int
	WithReactions int
	Incomplete    int
	// Totals sums each reaction label across all articles.
	Totals map[string]int
	// Counts is the number of articles carrying each label.
	Counts map[string]int
}

func summarize(articles []article.Article) articleStats {
	s := articleStats{
		Articles: len(articles),
		Totals:   make(map[string]int),
		Counts:   make(map[string]int),
	}
	for _, a := range articles {
		if a.Title != "" {
			s.WithTitle++
		}
		if a.Content != "" {
			s.WithContent++
		}
		if len(a.Reactions) > 0 {
			s.WithReactions++
		}
		if !a.IsComplete() {
			s.Incomplete++
		}
		for _, label := range a.Reactions.Labels() {
			s.Totals[label] += a.Reactions[label]
			s.Counts[label]++
		}
	}
	return s
}

// labels returns the reaction labels ordered by descending total, then name.
func (s articleStats) labels() []string {
	labels := make([]string, 0, len(s.Totals))
	for label := range s.Totals {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if s.Totals[labels[i]] != s.Totals[labels[j]] {
			return s.Totals[labels[i]] > s.Totals[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

func renderStats(w io.Writer, path string, s articleStats) {
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  Articles: %d\n", s.Articles)
	fmt.Fprintf(w, "  With title: %d\n", s.WithTitle)
	fmt.Fprintf(w, "  With content: %d\n", s.WithContent)
	fmt.Fprintf(w, "  With reactions: %d\n", s.WithReactions)
	fmt.Fprintf(w, "  Incomplete: %d\n", s.Incomplete)

	if len(s.Totals) == 0 {
		return
	}

	fmt.Fprintln(w)
	t := newTable(w)
	t.AppendHeader(table.Row{"Reaction", "Articles", "Total"})
	grand := 0
	for _, label := range s.labels() {
		t.AppendRow(table.Row{label, s.Counts[label], s.Totals[label]})
		grand += s.Totals[label]
	}
	t.AppendFooter(table.Row{"", "", grand})
	t.Render()
}
