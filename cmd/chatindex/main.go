// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/chatindex"
	"github.com/poiesic/chatindex/ai"
	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/extract"
	"github.com/poiesic/chatindex/pipeline"
	"github.com/poiesic/chatindex/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chatindex",
		Usage: "Semantic search index for exported chat conversations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "embed",
				Usage:  "Build the embedding index from a conversation export",
				Action: embedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the conversations JSON export",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Directory the index artifacts are written to",
						Value:   "./embeddings_output",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of conversations to process in each batch",
						Value: pipeline.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "checkpoint-interval",
						Usage: "Write a checkpoint every N processed conversations",
						Value: pipeline.DefaultCheckpointInterval,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Only process the first N conversations (0 = all)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding requests per batch",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts per embedding request",
						Value: pipeline.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index with a free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     append(indexFlags(), topKFlag(10)),
			},
			{
				Name:      "similar",
				Usage:     "Find conversations similar to an indexed conversation",
				ArgsUsage: "<conversation-id>",
				Action:    similarCommand,
				Flags:     append(indexFlags(), topKFlag(5)),
			},
			{
				Name:   "stats",
				Usage:  "Show statistics about the index",
				Action: statsCommand,
				Flags:  indexFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "index-dir",
			Aliases: []string{"d"},
			Usage:   "Directory containing the index artifacts",
			Value:   "./embeddings_output",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434",
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Embedding model name",
			Value: "all-minilm",
		},
	}
}

func topKFlag(defaultValue int) cli.Flag {
	return &cli.IntFlag{
		Name:    "top-k",
		Aliases: []string{"k"},
		Usage:   "Number of results to return",
		Value:   defaultValue,
	}
}

func embedCommand(c *cli.Context) error {
	ctx := context.Background()

	conversations, err := extract.LoadConversations(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to load conversations: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d conversations from %s\n", len(conversations), c.String("input"))

	ix, err := openIndex(c, c.String("output-dir"))
	if err != nil {
		return err
	}
	defer ix.Close()

	p, err := ix.NewPipeline(
		pipeline.WithBatchSize(c.Int("batch-size")),
		pipeline.WithCheckpointInterval(c.Int("checkpoint-interval")),
		pipeline.WithLimit(c.Int("limit")),
		pipeline.WithPoolSize(c.Int("pool-size")),
		pipeline.WithMaxRetries(c.Int("max-retries")),
		pipeline.WithRetryDelay(c.Duration("retry-delay")),
		pipeline.WithProgress(os.Stderr),
	)
	if err != nil {
		return err
	}
	defer p.Release()

	result, err := p.Run(ctx, conversations)
	if err != nil {
		return fmt.Errorf("embedding run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Embedded %d chunks from %d conversations in %v\n",
		result.EmbeddedCount, result.TotalConversations, result.Elapsed.Round(time.Second))
	if result.SkippedConversations > 0 || result.SkippedChunks > 0 {
		fmt.Fprintf(os.Stderr, "Skipped: %d conversations, %d chunks\n",
			result.SkippedConversations, result.SkippedChunks)
	}
	fmt.Fprintf(os.Stderr, "Index written to %s\n", c.String("output-dir"))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	ctx := context.Background()
	engine, closeIndex, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeIndex()

	results, err := engine.Search(ctx, query, c.Int("top-k"))
	if err != nil {
		return err
	}

	fmt.Printf("Top %d results for %q:\n", len(results), query)
	printResults(results)
	return nil
}

func similarCommand(c *cli.Context) error {
	conversationID := c.Args().First()
	if conversationID == "" {
		return fmt.Errorf("a conversation ID is required")
	}

	ctx := context.Background()
	engine, closeIndex, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeIndex()

	results, err := engine.FindSimilar(ctx, conversationID, c.Int("top-k"))
	if err != nil {
		return err
	}

	fmt.Printf("Conversations similar to %s:\n", conversationID)
	printResults(results)
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, closeIndex, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeIndex()

	stats, err := engine.Statistics()
	if err != nil {
		return err
	}

	fmt.Println("Index Statistics:")
	fmt.Printf("  Total embeddings: %d\n", stats.TotalEmbeddings)
	fmt.Printf("  Total conversations: %d\n", stats.TotalConversations)
	fmt.Printf("  Embedding dimension: %d\n", stats.EmbeddingDim)
	fmt.Printf("  Unique titles: %d\n", stats.UniqueTitles)
	fmt.Printf("  Duplicate titles: %d\n", stats.DuplicateTitles)
	fmt.Println("  Messages:")
	fmt.Printf("    Total: %d\n", stats.Messages.Total)
	fmt.Printf("    Avg per conversation: %.1f\n", stats.Messages.Avg)
	fmt.Printf("    Range: %d-%d\n", stats.Messages.Min, stats.Messages.Max)
	fmt.Printf("  Created: %s\n", stats.CreatedAt.Format(time.RFC3339))
	return nil
}

func openIndex(c *cli.Context, dir string) (*chatindex.Index, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithModel(c.String("model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}
	return chatindex.Open(dir, chatindex.WithAIConfig(cfg))
}

func openEngine(c *cli.Context) (*search.Engine, func(), error) {
	ix, err := openIndex(c, c.String("index-dir"))
	if err != nil {
		return nil, nil, err
	}

	e, err := ix.NewEngine(context.Background())
	if err != nil {
		ix.Close()
		return nil, nil, fmt.Errorf("failed to load index: %w", err)
	}
	return e, func() { ix.Close() }, nil
}

func printResults(results []*core.SearchResult) {
	for i, hit := range results {
		fmt.Printf("\n%d. Score: %.3f\n", i+1, hit.Score)
		fmt.Printf("   Title: %s\n", hit.Chunk.Title)
		fmt.Printf("   Messages: %d\n", hit.Chunk.MessageCount)
		fmt.Printf("   Preview: %s\n", hit.Chunk.TextPreview)
		fmt.Printf("   ID: %s\n", hit.Chunk.ConversationID)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
