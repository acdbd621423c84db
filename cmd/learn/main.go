// Command learn runs the exercise once without the API server: learn a
// model for every vending machine, compare them and print the verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"statelearn/compare"
	"statelearn/logging"
	"statelearn/workflow"
)

func main() {
	seed := flag.Int64("seed", 42, "seed for the equivalence oracle")
	outDir := flag.String("out", "learned_models", "directory for DOT and JSON output")
	logLevel := flag.String("log-level", "info", "log level")
	logFile := flag.String("log-file", "vending_machine_log.log", "log file, empty for console only")
	flag.Parse()

	if err := logging.Init(*logLevel, *logFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	runner := workflow.NewRunner(workflow.Options{
		Seed:      *seed,
		OutputDir: *outDir,
	}, nil, nil)

	report, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	printReport(report)
	if len(report.Correct) != 1 {
		os.Exit(1)
	}
}

func printReport(report *compare.Report) {
	fmt.Printf("Reference: %s\n\n", report.Reference)
	for _, m := range report.Models {
		fmt.Printf("%-20s %d states  %s\n", m.Name, m.States, m.Verdict)
		if m.Verdict == compare.VerdictFaulty {
			fmt.Printf("    separating word: %s\n", strings.Join(m.Separating, " "))
			fmt.Printf("    expected: %s\n", strings.Join(m.Expected, " "))
			fmt.Printf("    actual:   %s\n", strings.Join(m.Actual, " "))
		}
		if len(m.FailedScenarios) > 0 {
			fmt.Printf("    failed scenarios: %s\n", strings.Join(m.FailedScenarios, ", "))
		}
	}
	if len(report.Pairwise) > 0 {
		fmt.Println("\nPairwise differences:")
		for _, d := range report.Pairwise {
			fmt.Printf("  %s vs %s on %s\n", d.A, d.B, strings.Join(d.Word, " "))
		}
	}
	switch len(report.Correct) {
	case 0:
		fmt.Println("\nNo machine matches the reference behavior.")
	case 1:
		fmt.Printf("\nThe correct vending machine is: %s\n", report.Correct[0])
	default:
		fmt.Printf("\nMultiple machines match the reference: %s\n", strings.Join(report.Correct, ", "))
	}
}
