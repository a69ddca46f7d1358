package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type inputFlags struct {
	sites    string
	catalog  string
	scenario string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sites, "sites", "data/seeds/harwood_sites.json", "site records (JSON)")
	cmd.Flags().StringVar(&f.catalog, "catalog", "data/catalog.yaml", "treatment catalog (YAML)")
	cmd.Flags().StringVar(&f.scenario, "config", "data/scenario.yaml", "scenario configuration (YAML)")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	rootCmd := &cobra.Command{
		Use:          "siteselect",
		Short:        "Budget-constrained selection of roadway improvement alternatives",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(enumerateCmd())
	rootCmd.AddCommand(benchmarkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func solveCmd() *cobra.Command {
	var (
		in     inputFlags
		budget float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Enumerate alternatives for every site and select the best portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override *float64
			if cmd.Flags().Changed("budget") {
				override = &budget
			}
			return runSolve(cmd.Context(), cmd.OutOrStdout(), in, override, asJSON)
		},
	}

	in.register(cmd)
	cmd.Flags().Float64VarP(&budget, "budget", "b", 0, "budget override in dollars")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func enumerateCmd() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "List every site's alternatives with costs, benefits and objective coefficients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnumerate(cmd.Context(), cmd.OutOrStdout(), in)
		},
	}

	in.register(cmd)
	return cmd
}

func benchmarkCmd() *cobra.Command {
	var (
		sites        string
		alternatives string
		scenario     string
		budgets      []float64
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Solve published alternative tables (Harwood 2003 by default) at one or more budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), cmd.OutOrStdout(), sites, alternatives, scenario, budgets)
		},
	}

	cmd.Flags().StringVar(&sites, "sites", "data/seeds/harwood_sites.json", "site records (JSON)")
	cmd.Flags().StringVar(&alternatives, "alternatives", "data/benchmarks/harwood_alternatives.yaml", "published alternatives (YAML)")
	cmd.Flags().StringVar(&scenario, "config", "data/scenario.yaml", "scenario configuration (YAML)")
	cmd.Flags().Float64SliceVarP(&budgets, "budget", "b", []float64{50_000_000, 10_000_000}, "budgets to solve, in dollars")
	return cmd
}
