package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"site-selection-service/internal/domain"
)

func printRun(w io.Writer, run domain.SelectionRun) {
	s := run.Solution
	fmt.Fprintf(w, "RUN %s  scenario=%s\n", run.RunID, run.Scenario)
	fmt.Fprintf(w, "  budget:       $%s\n", money(s.Budget))
	fmt.Fprintf(w, "  status:       %s (%s)\n", s.Status, s.Quality)
	fmt.Fprintf(w, "  total cost:   $%s  (%.1f%% of budget)\n", s.Totals.TotalCost.StringFixed(2), 100*s.BudgetUtilization())
	fmt.Fprintf(w, "  benefit:      $%s\n", s.Totals.TotalBenefit.StringFixed(2))
	fmt.Fprintf(w, "  net benefit:  $%s\n", s.Totals.NetBenefit.StringFixed(2))
	fmt.Fprintf(w, "  improved:     %d  deferred: %d\n", s.SitesImproved, s.SitesDeferred)
	if deferred := s.DoNothingSites(); len(deferred) > 0 {
		fmt.Fprintf(w, "  do nothing:   %s\n", strings.Join(deferred, ", "))
	}
	fmt.Fprintf(w, "  solve time:   %s  gap: %s\n", s.Runtime, gap(s.Gap))
	fmt.Fprintf(w, "  computed on:  %s, %s, %s RAM\n", run.System.Platform, run.System.CPU, run.System.RAM)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SITE\tALT\tRESURFACING\tSAFETY\tBENEFIT\tOBJECTIVE\t\tDESCRIPTION")
	for _, sel := range s.Selections {
		a := sel.Alternative
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t\t%s\n",
			sel.SiteID, a.Index, money(a.Costs.Resurfacing), money(a.Costs.Safety),
			money(a.Benefits.Total()), money(sel.Objective), description(a))
	}
	tw.Flush()

	printWarnings(w, run.Warnings)
}

func printAlternatives(w io.Writer, set *domain.AlternativeSet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SITE\tALT\tCOST\tBENEFIT\tPENALTY\tOBJECTIVE\t\tDESCRIPTION")
	for i := 0; i < set.SiteCount(); i++ {
		for _, a := range set.SiteAlternatives(i) {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t\t%s\n",
				a.SiteID, a.Index, money(a.Costs.Total()), money(a.Benefits.Total()),
				money(a.Penalties.Total()), money(a.ObjectiveCoefficient()), description(a))
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d alternatives across %d sites\n", set.Len(), set.SiteCount())
}

func printWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\nWARNINGS (%d):\n", len(warnings))
	for _, msg := range warnings {
		fmt.Fprintf(w, "  * %s\n", msg)
	}
}

func description(a domain.Alternative) string {
	if a.Description != "" {
		return a.Description
	}
	return strings.Join(a.Treatments, " + ")
}

func money(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func gap(g float64) string {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f%%", 100*g)
}
