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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/passage"
	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/orchestrate"
	"github.com/poiesic/passage/websearch/brave"
)

func main() {
	app := &cli.App{
		Name:  "passage",
		Usage: "Hybrid passage retrieval over documents and the web",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "retrieve",
				Usage:  "Retrieve the most relevant passages of a document for a query",
				Action: retrieveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the document",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "content-type",
						Aliases: []string{"t"},
						Usage:   "Document content type (e.g. application/pdf, text/html)",
						Value:   string(core.KindPlainText),
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to return",
						Value: 10,
					},
				}, engineFlags()...),
			},
			{
				Name:   "search",
				Usage:  "Answer a query from the live web with two-pass retrieval",
				Action: searchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "brave-key",
						Usage:   "Brave Search API subscription token",
						EnvVars: []string{"BRAVE_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to return",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "search-max",
						Usage: "Number of search results to consider",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "no-second-pass",
						Usage: "Rank search snippets only, skip page re-ingestion",
					},
				}, engineFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Path to the artifact cache directory",
			Value: ".passage-cache",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "bge-base-en-v1.5",
		},
		&cli.StringFlag{
			Name:  "rerank-host",
			Usage: "Rerank service host URL",
			Value: "http://localhost:8000/v1",
		},
		&cli.StringFlag{
			Name:  "rerank-model",
			Usage: "Rerank model name",
			Value: "jina-reranker-v2-base-multilingual",
		},
	}
}

func newEngine(c *cli.Context) (*passage.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRerankHost(c.String("rerank-host")),
		ai.WithRerankModel(c.String("rerank-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model configuration: %w", err)
	}

	return passage.New(c.String("cache"), passage.WithAIConfig(aiConfig))
}

func retrieveCommand(c *cli.Context) error {
	ctx := context.Background()

	kind, err := core.KindFromContentType(c.String("content-type"))
	if err != nil {
		return fmt.Errorf("content type %q is not supported", c.String("content-type"))
	}

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.RetrieveDocument(ctx, c.String("query"), data, kind, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	return printJSON(result)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	key := c.String("brave-key")
	if key == "" {
		return fmt.Errorf("brave-key is required (flag or BRAVE_API_KEY)")
	}
	searcher, err := brave.NewClient(key)
	if err != nil {
		return err
	}

	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	o := engine.NewOrchestrator(searcher,
		orchestrate.WithSearchMax(c.Int("search-max")),
		orchestrate.WithSecondPass(!c.Bool("no-second-pass")),
	)

	monitor := orchestrate.MonitorFunc(func(stage orchestrate.Stage, detail string) {
		if detail != "" {
			fmt.Fprintf(os.Stderr, "%s %s\n", stage, detail)
			return
		}
		fmt.Fprintln(os.Stderr, stage)
	})

	result, err := o.RunWithMonitor(ctx, c.String("query"), c.Int("top-k"), monitor)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
