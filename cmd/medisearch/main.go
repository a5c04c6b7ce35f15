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
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/medisearch"
	"github.com/poiesic/medisearch/config"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/reindex"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "medisearch",
		Usage: "Hybrid retrieval over medical documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document as a single embedded record",
				ArgsUsage: "[content]",
				Action:    ingestCommand,
				Flags:     ingestFlags(),
			},
			{
				Name:      "chunk",
				Usage:     "Ingest a document as overlapping embedded chunks",
				ArgsUsage: "[content]",
				Action:    chunkCommand,
				Flags:     ingestFlags(),
			},
			{
				Name:      "search",
				Usage:     "Search documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (hybrid, vector, lexical)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum score for results",
					},
					&cli.StringFlag{
						Name:  "context",
						Usage: "Domain context to steer query embedding",
					},
					&cli.StringFlag{
						Name:  "patient",
						Usage: "Filter by patient ID",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by document type",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List stored documents, newest first",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of documents to skip",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of documents",
						Value:   20,
					},
					&cli.StringFlag{
						Name:  "patient",
						Usage: "Filter by patient ID",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by document type",
					},
				},
			},
			{
				Name:      "get",
				Usage:     "Show a document by ID",
				ArgsUsage: "<id>",
				Action:    getCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its chunks by ID",
				ArgsUsage: "<id>",
				Action:    deleteCommand,
			},
			{
				Name:      "embed",
				Usage:     "Generate an embedding for a text",
				ArgsUsage: "<text>",
				Action:    embedCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all stored documents",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed batches",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding workers",
						Value: 2,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Aliases:  []string{"t"},
			Usage:    "Document title",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read document content from a file instead of the argument",
		},
		&cli.StringFlag{
			Name:  "patient",
			Usage: "Patient ID",
		},
		&cli.StringFlag{
			Name:  "type",
			Usage: "Document type (clinical_note, lab_report, prescription, discharge_summary, other)",
		},
		&cli.StringSliceFlag{
			Name:  "tag",
			Usage: "Tag to attach (repeatable)",
		},
	}
}

func openDatabase(c *cli.Context) (*medisearch.Database, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.DatabasePath
	if override := c.String("db"); override != "" {
		dbPath = override
	}

	return medisearch.NewDatabase(dbPath, medisearch.WithConfig(cfg))
}

func printResponse(resp *medisearch.Response) error {
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !resp.Success {
		return cli.Exit("", 1)
	}
	return nil
}

func uploadRequest(c *cli.Context) (*medisearch.UploadRequest, error) {
	req := &medisearch.UploadRequest{
		Title:        c.String("title"),
		PatientID:    c.String("patient"),
		DocumentType: c.String("type"),
		Tags:         c.StringSlice("tag"),
	}
	if file := c.String("file"); file != "" {
		req.FileRef = file
	} else if c.Args().Present() {
		req.Content = strings.Join(c.Args().Slice(), " ")
	} else {
		return nil, fmt.Errorf("either a content argument or --file is required")
	}
	return req, nil
}

func ingestCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	req, err := uploadRequest(c)
	if err != nil {
		return err
	}
	return printResponse(db.UploadDocument(context.Background(), req))
}

func chunkCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	req, err := uploadRequest(c)
	if err != nil {
		return err
	}
	return printResponse(db.ChunkAndEmbedDocument(context.Background(), req))
}

func searchCommand(c *cli.Context) error {
	if !c.Args().Present() {
		return fmt.Errorf("a query argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	req := &medisearch.SearchRequest{
		Query:        strings.Join(c.Args().Slice(), " "),
		Limit:        c.Int("limit"),
		Threshold:    float32(c.Float64("threshold")),
		Mode:         c.String("mode"),
		Context:      c.String("context"),
		PatientID:    c.String("patient"),
		DocumentType: c.String("type"),
	}

	return printResponse(db.SearchDocuments(context.Background(), req))
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return printResponse(db.ListDocuments(context.Background(), &medisearch.ListRequest{
		Offset:       c.Int("offset"),
		Limit:        c.Int("limit"),
		PatientID:    c.String("patient"),
		DocumentType: c.String("type"),
	}))
}

func parseID(c *cli.Context) (core.ID, error) {
	if !c.Args().Present() {
		return 0, fmt.Errorf("a document ID argument is required")
	}
	raw, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document ID %q: %w", c.Args().First(), err)
	}
	return core.ID(raw), nil
}

func getCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	return printResponse(db.GetDocument(context.Background(), id))
}

func deleteCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	return printResponse(db.DeleteDocument(context.Background(), id))
}

func embedCommand(c *cli.Context) error {
	if !c.Args().Present() {
		return fmt.Errorf("a text argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return printResponse(db.GenerateEmbedding(context.Background(), strings.Join(c.Args().Slice(), " ")))
}

func reindexCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Workers:        c.Int("workers"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if reindexConfig.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}

	reindexer := reindex.NewReindexer(db.DocumentRepository(), db.Orchestrator(), reindexConfig, os.Stderr)
	if err := reindexer.Run(context.Background()); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
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
