// Package main provides a command line front end for the workbook ingestion engine.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rpattn/finsheet/internal/config"
	"github.com/rpattn/finsheet/internal/fieldschema"
	"github.com/rpattn/finsheet/internal/ingestion"
	"github.com/spf13/cobra"
)

var (
	configPath string
	periodType string
	maxPeriods int
	outputPath string
	pretty     bool
	group      string
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finsheet",
		Short: "Ingest financial planning workbooks",
		Long: `finsheet reads xlsx planning workbooks (drivers, overrides, instructions)
and prints the normalized per-period dataset with a quality report as JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing config.yaml")

	ingestCmd := &cobra.Command{
		Use:   "ingest [input.xlsx]",
		Short: "Ingest a workbook and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}
	ingestCmd.Flags().StringVar(&periodType, "period-type", "", "Period type label used when the workbook does not state one")
	ingestCmd.Flags().IntVar(&maxPeriods, "max-periods", 0, "Override the maximum supported period count")
	ingestCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	ingestCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "List the recognized field keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printFields(cmd.OutOrStdout(), fieldschema.Default, fieldschema.Group(group))
		},
	}
	fieldsCmd.Flags().StringVar(&group, "group", "", "Only list fields in this group")

	rootCmd.AddCommand(ingestCmd, fieldsCmd)
	return rootCmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	settings := cfg.Ingestion.PeriodSettings()
	if maxPeriods > 0 {
		settings.MaxPeriods = maxPeriods
	}
	hint := periodType
	if hint == "" {
		hint = cfg.Ingestion.PeriodTypeHint
	}

	payload, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	result, err := ingestion.NewEngine(fieldschema.Default, settings).Run(payload, hint)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func printFields(w io.Writer, registry *fieldschema.Registry, only fieldschema.Group) error {
	defs := registry.Fields()
	if only != "" {
		defs = registry.FieldsInGroups(only)
		if len(defs) == 0 {
			return fmt.Errorf("unknown group %q", only)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tGROUP\tTYPE\tFIRST PERIOD ONLY")
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\n", def.Key, def.Label, def.Group, def.ValueType, def.FirstPeriodOnly)
	}
	return tw.Flush()
}
