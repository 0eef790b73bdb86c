// Package ingest wires report parsing to the vector store: it walks a
// directory of incident reports, builds retrievable records, and uploads
// them partitioned by section type.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/report"
	"github.com/fyrsmithlabs/incidentd/internal/vectorstore"
)

// Uploader uploads parsed records partitioned by namespace.
type Uploader interface {
	UpsertByNamespace(ctx context.Context, documents []string, metadatas []map[string]any, ids []string) (vectorstore.NamespaceStats, error)
}

// Pipeline loads incident reports from disk into the vector store.
type Pipeline struct {
	parser   *report.Parser
	uploader Uploader
	pattern  string
	logger   *zap.Logger
}

// NewPipeline creates an ingestion pipeline. pattern selects report files
// within the source directory; empty means "*.txt".
func NewPipeline(parser *report.Parser, uploader Uploader, pattern string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		parser:   parser,
		uploader: uploader,
		pattern:  pattern,
		logger:   logger,
	}
}

// Result summarizes one ingestion run.
type Result struct {
	// Records is the number of records produced by parsing.
	Records int

	// Stats carries per-namespace upload outcomes.
	Stats vectorstore.NamespaceStats
}

// Failed returns the namespaces whose upload failed, with their errors.
func (r Result) Failed() map[string]error {
	failed := make(map[string]error)
	for name, res := range r.Stats.Namespaces {
		if res.Err != nil {
			failed[name] = res.Err
		}
	}
	return failed
}

// Run parses every report under dir and uploads the resulting records. An
// empty directory is an error; individual namespace upload failures are
// reported in the result without aborting the run.
func (p *Pipeline) Run(ctx context.Context, dir string) (Result, error) {
	documents, metadatas, ids, err := p.parser.LoadDirectory(ctx, dir, p.pattern)
	if err != nil {
		return Result{}, fmt.Errorf("loading reports from %s: %w", dir, err)
	}
	if len(documents) == 0 {
		return Result{}, fmt.Errorf("no reports found in %s matching %q", dir, p.pattern)
	}

	p.logger.Info("parsed reports",
		zap.String("dir", dir),
		zap.Int("records", len(documents)),
	)

	stats, err := p.uploader.UpsertByNamespace(ctx, documents, metadatas, ids)
	if err != nil {
		return Result{Records: len(documents)}, fmt.Errorf("uploading records: %w", err)
	}

	result := Result{Records: len(documents), Stats: stats}
	for name, res := range stats.Namespaces {
		if res.Err != nil {
			p.logger.Warn("namespace upload failed",
				zap.String("namespace", name),
				zap.Error(res.Err),
			)
			continue
		}
		p.logger.Info("namespace uploaded",
			zap.String("namespace", name),
			zap.Int("uploaded", res.Stats.Uploaded),
			zap.Int("total_in_index", res.Stats.TotalInIndex),
		)
	}

	return result, nil
}
