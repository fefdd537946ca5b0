package main

import (
	"daystack/internal/domain"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

func printPlan(w io.Writer, day time.Time, plan *domain.DayPlan, loc *time.Location) {
	fmt.Fprintf(w, "Plan for %s\n\n", day.Format("Mon 2006-01-02"))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range plan.Entries {
		switch {
		case e.Event != nil:
			fmt.Fprintf(tw, "%s\t%s\tevent\t%s\t%s\n",
				clock(e.Event.Start, loc), clock(e.Event.End, loc), e.Event.Name, e.Event.Location)
		case e.Block != nil:
			b := e.Block
			fmt.Fprintf(tw, "%s\t%s\ttask\t%s\t%s\t(travel %d min in, %d min out)\n",
				b.Start.In(loc).Format("15:04"), b.End.In(loc).Format("15:04"), b.TaskName, b.Location,
				b.TravelBefore, b.TravelAfter)
		}
	}
	tw.Flush()

	if len(plan.Gaps) > 0 {
		fmt.Fprintln(w, "\nGaps:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, g := range plan.Gaps {
			direct := "?"
			if g.DirectTravel != nil {
				direct = fmt.Sprintf("%d", *g.DirectTravel)
			}
			status := fmt.Sprintf("placed %d, slack %d min", len(g.Blocks), g.SlackAfter)
			switch {
			case g.Gap.Degenerate():
				status = "skipped"
			case g.Blocked:
				status += ", blocked"
			}
			fmt.Fprintf(tw, "#%d\t%s -> %s\t%d min\tdirect %s min\t%s\n",
				g.Gap.Index, orDash(g.Gap.FromLocation), orDash(g.Gap.ToLocation), g.Gap.Minutes(), direct, status)
		}
		tw.Flush()
	}

	if len(plan.Unplaced) > 0 {
		fmt.Fprintln(w, "\nUnplaced:")
		for _, t := range plan.Unplaced {
			fmt.Fprintf(w, "  %s (%d min) %s\n", t.DisplayName(), t.DurationMinutes, orDash(t.Location))
		}
	}
}

func printRoute(w io.Writer, nodes []domain.RouteNode, travel, work, total float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, n := range nodes {
		fmt.Fprintf(tw, "%d\t%s\t%.0f min\n", i, n.Name, n.WorkMinutes)
	}
	tw.Flush()
	fmt.Fprintf(w, "\ntravel %.0f min, work %.0f min, total %.0f min\n", travel, work, total)
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "--:--"
	}
	return t.In(loc).Format("15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
