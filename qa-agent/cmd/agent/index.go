package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/ingestion"
	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/processing"
)

func newIndexCommand(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index local .txt, .md and .pdf files into the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, vectors, err := a.openVectorStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			a.log.WithField("path", path).Info("Starting indexing")
			embedder := processing.NewEmbedder(a.cfg.Embedding.URL, a.cfg.Embedding.Model)
			rep, err := ingestion.NewIndexer(embedder, vectors, a.log).IndexPath(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexing complete: %d files, %d chunks, %d skipped.\n",
				rep.Files, rep.Chunks, len(rep.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "./data", "path to folder to index")
	return cmd
}
