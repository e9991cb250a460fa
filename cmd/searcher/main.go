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


// Interactive search shell over a built conversation index.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/poiesic/chatindex"
	"github.com/poiesic/chatindex/ai"
	"github.com/poiesic/chatindex/core"
	"github.com/poiesic/chatindex/search"
)

var (
	indexDir = flag.String("index-dir", "./embeddings_output", "Directory containing the index artifacts")
	host     = flag.String("host", "http://localhost:11434", "Embedding service host URL")
	model    = flag.String("model", "all-minilm", "Embedding model name")
	topK     = flag.Int("top-k", 10, "Number of results per search")
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	flag.Parse()

	cfg := ai.NewConfig(ai.WithHost(*host), ai.WithModel(*model))
	ix, err := chatindex.Open(*indexDir, chatindex.WithAIConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ix.Close()

	ctx := context.Background()
	engine, err := ix.NewEngine(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "\nBuild the index first with: chatindex embed --input conversations.json")
		os.Exit(1)
	}

	summary := engine.Summary()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Println(bold("=== Conversation Search ==="))
	fmt.Printf("Loaded %d conversation embeddings\n", summary.EmbeddingCount)
	fmt.Println("Type your search query (or 'quit' to exit, 'stats' for statistics)")
	fmt.Println(strings.Repeat("-", 50))

	scanner := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgGreen, color.Bold).SprintFunc()

	for {
		fmt.Print(prompt("\nSearch: "))
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(query) {
		case "quit":
			return
		case "":
			continue
		case "stats":
			printStatistics(engine)
			continue
		}

		results, err := engine.Search(ctx, query, *topK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(results) == 0 {
			fmt.Println("No results found")
			continue
		}

		fmt.Printf("\nTop %d results:\n", len(results))
		fmt.Println(strings.Repeat("-", 80))
		printResults(results)

		followSimilar(ctx, engine, scanner, results)
	}
}

// followSimilar offers a find-similar lookup on one of the shown results.
func followSimilar(ctx context.Context, engine *search.Engine, scanner *bufio.Scanner, results []*core.SearchResult) {
	fmt.Println("\nEnter a result number to find similar conversations (or press Enter to continue):")
	fmt.Print("Choice: ")
	if !scanner.Scan() {
		return
	}

	choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || choice < 1 || choice > len(results) {
		return
	}

	selected := results[choice-1].Chunk
	fmt.Printf("\nFinding conversations similar to: %s\n", selected.Title)

	similar, err := engine.FindSimilar(ctx, selected.ConversationID, 5)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Println("\nSimilar conversations:")
	for i, hit := range similar {
		fmt.Printf("  %d. %.3f - %s\n", i+1, hit.Score, hit.Chunk.Title)
	}
}

func printResults(results []*core.SearchResult) {
	title := color.New(color.FgCyan, color.Bold).SprintFunc()
	for i, hit := range results {
		fmt.Printf("\n%d. Score: %.3f\n", i+1, hit.Score)
		fmt.Printf("   Title: %s\n", title(hit.Chunk.Title))
		fmt.Printf("   Messages: %d\n", hit.Chunk.MessageCount)
		fmt.Printf("   Preview: %s\n", core.TruncateRunes(hit.Chunk.TextPreview, 150))
		fmt.Printf("   ID: %s\n", hit.Chunk.ConversationID)
	}
}

func printStatistics(engine *search.Engine) {
	stats, err := engine.Statistics()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Println("\nIndex Statistics:")
	fmt.Printf("  Total embeddings: %d\n", stats.TotalEmbeddings)
	fmt.Printf("  Unique conversations: %d\n", stats.TotalConversations)
	fmt.Printf("  Unique titles: %d\n", stats.UniqueTitles)
	fmt.Printf("  Duplicate conversations: %d\n", stats.DuplicateTitles)
	fmt.Println("  Message statistics:")
	fmt.Printf("    Total messages: %d\n", stats.Messages.Total)
	fmt.Printf("    Avg per conversation: %.1f\n", stats.Messages.Avg)
	fmt.Printf("    Range: %d-%d\n", stats.Messages.Min, stats.Messages.Max)
	fmt.Printf("  Index created: %s\n", stats.CreatedAt)
}
