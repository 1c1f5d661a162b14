package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragdesk/ragdesk/internal/retrieval"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Search a knowledge base",
	Long:  `Embeds the question and returns the most relevant stored chunks.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("kb", "default", "knowledge base id")
	queryCmd.Flags().Int("limit", 5, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	kbID, _ := cmd.Flags().GetString("kb")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openVectorStore(cfg, embedder, logger)
	if err != nil {
		return err
	}
	if store.Count() == 0 {
		fmt.Println("Vector store is empty. Run `ragdesk ingest` first.")
		return nil
	}

	svc := retrieval.NewService(embedder, store, logger)
	k, err := svc.Retrieve(ctx, question, kbID, vectordb.SearchOptions{Limit: limit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if !k.HasRelevantInformation {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(k.Chunks)
	}

	fmt.Printf("Found %d results:\n\n", len(k.Chunks))
	for i, r := range k.Chunks {
		fmt.Printf("  %d. [%.1f%%] %s / %s\n", i+1, r.Score*100, r.DocumentID, r.ChunkID)
		fmt.Printf("     %s\n\n", truncate(r.Text, 160))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
