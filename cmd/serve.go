package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ragdesk/ragdesk/internal/agent"
	"github.com/ragdesk/ragdesk/internal/ingest"
	"github.com/ragdesk/ragdesk/internal/retrieval"
	"github.com/ragdesk/ragdesk/internal/server"
	"github.com/ragdesk/ragdesk/internal/tools"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the support assistant HTTP server",
	Long:  `Starts the ragdesk server exposing the chat, document ingestion, and vector search APIs.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := buildLLMClient(cfg, logger)
	if err != nil {
		return err
	}
	tickets, err := buildTicketing(cfg)
	if err != nil {
		return err
	}
	leads, err := buildCRM(cfg)
	if err != nil {
		return err
	}

	gen := ingest.NewGenerator(embedder, store, logger,
		ingest.WithBatchSize(cfg.Ingest.BatchSize),
		ingest.WithConcurrency(cfg.Ingest.Concurrency))
	pipeline := ingest.NewPipeline(db, store, gen, logger)
	worker := ingest.NewWorker(pipeline, db, 64, logger)

	retrievalSvc := retrieval.NewService(embedder, store, logger)
	registry := tools.NewRegistry(logger,
		tools.NewCreateLeadTool(leads),
		tools.NewSeminarInviteTool(leads))
	assistant := agent.New(client, retrievalSvc, registry, tickets, db, logger)

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	srv := server.New(server.Config{Port: port, AllowAll: cfg.Server.AllowAll}, logger)

	r := srv.Router()
	agent.RegisterRoutes(r, assistant, db)
	ingest.RegisterRoutes(r, db, worker)
	retrieval.RegisterRoutes(r, retrievalSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go worker.Run(ctx)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		if err := store.Persist(context.Background(), vectorDir(cfg)); err != nil {
			logger.Error("persisting vector store", "error", err)
		}
		srv.Shutdown(context.Background())
	}()

	logger.Info("ragdesk starting",
		"version", Version, "port", port,
		"ticketing", tickets.Name(), "crm", leads.Name(),
		"chunks_indexed", store.Count())

	return srv.Start()
}
