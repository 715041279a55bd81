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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/passage"
	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/orchestrate"
	"github.com/poiesic/passage/websearch"
	"github.com/poiesic/passage/websearch/brave"
)

func main() {
	app := &cli.App{
		Name:  "passaged",
		Usage: "HTTP server for hybrid passage retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on",
				Value: ":8080",
			},
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
			&cli.StringFlag{
				Name:    "brave-key",
				Usage:   "Brave Search API subscription token (enables /api/v1/search)",
				EnvVars: []string{"BRAVE_API_KEY"},
			},
		},
		Before: setupLogger,
		Action: serveCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type server struct {
	engine   *passage.Engine
	searcher websearch.Provider
	logger   *slog.Logger
}

func serveCommand(c *cli.Context) error {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRerankHost(c.String("rerank-host")),
		ai.WithRerankModel(c.String("rerank-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid model configuration: %w", err)
	}

	engine, err := passage.New(c.String("cache"), passage.WithAIConfig(aiConfig))
	if err != nil {
		return err
	}
	defer engine.Close()

	s := &server{
		engine: engine,
		logger: slog.Default().With("component", "server"),
	}
	if key := c.String("brave-key"); key != "" {
		searcher, err := brave.NewClient(key)
		if err != nil {
			return err
		}
		s.searcher = searcher
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.POST("/api/v1/retrieve", s.handleRetrieve)
	e.GET("/api/v1/search", s.handleSearch)

	return e.Start(c.String("listen"))
}

// handleRetrieve answers a multipart query + file upload with the most
// relevant passages of the uploaded document.
func (s *server) handleRetrieve(c echo.Context) error {
	query := c.FormValue("query")

	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("file is required"))
	}

	src, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("file is required"))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("failed to read file"))
	}

	contentType := header.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	kind, err := core.KindFromContentType(contentType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Sprintf("unsupported content type %q", contentType)))
	}

	topK := 10
	if v := c.QueryParam("top_k"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			topK = parsed
		}
	}

	result, err := s.engine.RetrieveDocument(c.Request().Context(), query, data, kind, topK)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyQuery),
			errors.Is(err, core.ErrFileRequired),
			errors.Is(err, core.ErrUnsupportedKind):
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		default:
			s.logger.Error("retrieval failed", "err", err)
			return c.JSON(http.StatusInternalServerError, errorBody("retrieval processing failed"))
		}
	}

	return c.JSON(http.StatusOK, result)
}

// handleSearch streams web-augmented retrieval progress as NDJSON: one
// status line per stage, then a final result or error line.
func (s *server) handleSearch(c echo.Context) error {
	if s.searcher == nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody("web search is not configured"))
	}

	query := c.QueryParam("query")
	topK := 10
	if v := c.QueryParam("top_k"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			topK = parsed
		}
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	res.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(res)
	emit := func(v any) {
		if err := enc.Encode(v); err != nil {
			return
		}
		res.Flush()
	}

	o := s.engine.NewOrchestrator(s.searcher)
	result, err := o.RunWithMonitor(c.Request().Context(), query, topK,
		orchestrate.MonitorFunc(func(stage orchestrate.Stage, detail string) {
			emit(map[string]string{"status": string(stage), "detail": detail})
		}))
	if err != nil {
		emit(map[string]string{"error": err.Error()})
		return nil
	}

	emit(map[string]any{"result": result})
	return nil
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
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
