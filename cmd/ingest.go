package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ragdesk/ragdesk/internal/ingest"
	"github.com/ragdesk/ragdesk/internal/knowledge"
	"github.com/ragdesk/ragdesk/internal/progress"
)

var (
	ingestKB string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [patterns...]",
	Short: "Ingest documents into a knowledge base",
	Long: `Extracts text from the matched files (PDF or plain text), embeds the
chunks, and stores them in the vector database. Glob patterns like
"docs/**/*.pdf" are supported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestKB, "kb", "default", "knowledge base id")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	var files []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fmt.Println("No files matched.")
		return nil
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openVectorStore(cfg, embedder, logger)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	gen := ingest.NewGenerator(embedder, store, logger,
		ingest.WithBatchSize(cfg.Ingest.BatchSize),
		ingest.WithConcurrency(cfg.Ingest.Concurrency))
	pipeline := ingest.NewPipeline(db, store, gen, logger)

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	var failed int
	for i, file := range files {
		doc, err := pipeline.IngestFile(ctx, ingestKB, file)
		if err != nil || (doc != nil && doc.Status != knowledge.StatusProcessed) {
			failed++
			fmt.Fprintf(os.Stderr, "\n%s: failed", file)
			if doc != nil && doc.ErrorMessage != "" {
				fmt.Fprintf(os.Stderr, " (%s)", doc.ErrorMessage)
			}
			fmt.Fprintln(os.Stderr)
		}
		reporter.Update(i+1, file)
	}
	reporter.Finish()

	if err := store.Persist(ctx, vectorDir(cfg)); err != nil {
		return fmt.Errorf("persisting vector store: %w", err)
	}

	fmt.Printf("Ingested %d of %d files into knowledge base %q (%d chunks stored).\n",
		len(files)-failed, len(files), ingestKB, store.Count())
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
