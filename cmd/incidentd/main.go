// Package main implements the incidentd CLI for ingesting autonomous
// vehicle fleet incident reports and analyzing new incidents against the
// historical corpus.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/config"
	"github.com/fyrsmithlabs/incidentd/internal/genai"
	"github.com/fyrsmithlabs/incidentd/internal/ingest"
	"github.com/fyrsmithlabs/incidentd/internal/logging"
	"github.com/fyrsmithlabs/incidentd/internal/report"
	"github.com/fyrsmithlabs/incidentd/internal/vectorstore"
	"github.com/fyrsmithlabs/incidentd/internal/workflow"
)

var (
	configPath string
	// version is set at build time via ldflags
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "incidentd",
	Short: "Fleet security incident analysis",
	Long: `incidentd ingests autonomous vehicle fleet security incident reports into
a vector index and analyzes new incidents against that historical corpus,
producing executive summaries and mitigation plans.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Parse and index incident reports from a directory",
	Long: `Parse every incident report in the directory, extract sections and
metadata, and upload the records into the vector index partitioned by
section type.

Examples:
  # Ingest all .txt reports from a directory
  incidentd ingest ./reports

  # With an explicit config file
  incidentd ingest --config incidentd.yaml ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze an incident report",
	Long: `Run an incident report through the analysis workflow: extract standard
information, then either produce a conservative advisory (when critical
information is missing) or a full summary with a mitigation plan grounded
in similar historical incidents.

Examples:
  # Analyze a report file
  incidentd analyze incident.txt

  # Analyze from stdin
  cat incident.txt | incidentd analyze -

  # Emit the full result as JSON
  incidentd analyze --json incident.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	jsonOutput bool
	verbose    bool
)

func init() {
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print extraction and retrieval details")
}

// setup loads configuration and builds the shared collaborators.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *genai.Client, *vectorstore.QdrantIndex, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	client, err := genai.NewClient(ctx, genai.Config{
		APIKey:             cfg.GenAI.APIKey,
		Model:              cfg.GenAI.Model,
		EmbeddingModel:     cfg.GenAI.EmbeddingModel,
		EmbeddingDimension: cfg.GenAI.EmbeddingDimension,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("creating genai client: %w", err)
	}

	index, err := vectorstore.NewQdrantIndex(vectorstore.QdrantConfig{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		Collection: cfg.Qdrant.Collection,
		VectorSize: uint64(cfg.GenAI.EmbeddingDimension),
		UseTLS:     cfg.Qdrant.UseTLS,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return cfg, logger, client, index, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, logger, client, index, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer index.Close()
	defer logger.Sync() //nolint:errcheck

	store := vectorstore.NewStore(index, client, vectorstore.StoreConfig{
		BatchSize:  cfg.Ingest.BatchSize,
		BatchDelay: cfg.Ingest.BatchDelay,
		StatsDelay: cfg.Ingest.StatsDelay,
	}, logger)

	parser := report.NewParser(client, logger)
	pipeline := ingest.NewPipeline(parser, store, cfg.Ingest.FilePattern, logger)

	result, err := pipeline.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d records across %d namespaces (%d uploaded)\n",
		result.Records, len(result.Stats.Namespaces), result.Stats.TotalUploaded)

	names := make([]string, 0, len(result.Stats.Namespaces))
	for name := range result.Stats.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res := result.Stats.Namespaces[name]
		if res.Err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-16s FAILED: %v\n", name, res.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %d records (index total: %d)\n",
			name, res.Stats.Uploaded, res.Stats.TotalInIndex)
	}

	if failed := result.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d namespace upload(s) failed", len(failed))
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	reportText, err := readReport(args[0])
	if err != nil {
		return err
	}

	cfg, logger, client, index, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer index.Close()
	defer logger.Sync() //nolint:errcheck

	store := vectorstore.NewStore(index, client, vectorstore.StoreConfig{}, logger)
	engine := workflow.NewEngine(client, client, store, cfg.Retrieval.TopK, logger)

	result := engine.Run(cmd.Context(), reportText)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Response)

	if verbose {
		v := result.Validation
		fmt.Fprintf(cmd.OutOrStdout(), `
---
Extraction:
  WHO:    %s
  WHAT:   %s
  WHERE:  %s
  WHEN:   %s
  IMPACT: %s
  STATUS: %s
Critical info missing: %t
Retrieved incidents: %d
Retrieved recommendations: %d
`, v.Who, v.What, v.Where, v.When, v.Impact, v.Status,
			v.CriticalInfoMissing, result.NumIncidents, result.NumRecommendations)
	}

	if result.Error != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nWarning: analysis degraded: %s\n", result.Error)
	}
	return nil
}

// readReport reads the report from a file, or stdin when the argument is "-".
func readReport(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading report from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading report: %w", err)
	}
	return string(data), nil
}
