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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/poiesic/ragchat"
	"github.com/poiesic/ragchat/config"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/server"
	"github.com/urfave/cli/v2"
)

// openSystem is replaced in tests to avoid real model services.
var openSystem = func(ctx context.Context, cfg *config.Config) (*ragchat.System, error) {
	return ragchat.Open(ctx, cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ragchat",
		Usage: "Answer questions over an indexed document library with inline citations",
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
				Usage:   "Path to a TOML config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file loaded before reading RAGCHAT_* overrides",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadEnvFile(c.String("env-file"))
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the chat and feedback HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides server.addr)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask one question and print the cited answer",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session id to continue (a new one is created when empty)",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Print the stored history of a session",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session id",
						Required: true,
					},
				},
			},
			{
				Name:   "feedback",
				Usage:  "Record a rating or comment on an answer",
				Action: feedbackCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session id",
						Required: true,
					},
					&cli.Int64Flag{
						Name:     "timestamp",
						Aliases:  []string{"t"},
						Usage:    "Timestamp of the answer, as printed by ask",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "rating",
						Usage: "thumbs_up or thumbs_down",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Free-text feedback",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Embed passages from a JSON lines file into the local index",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON lines file of {id, passage, doc_type, metadata}",
						Required: true,
					},
				},
			},
		},
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no env file found", "path", path)
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withSystem(c *cli.Context, fn func(ctx context.Context, sys *ragchat.System) error) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sys, err := openSystem(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer sys.Close()
	return fn(ctx, sys)
}

func serveCommand(c *cli.Context) error {
	return withSystem(c, func(ctx context.Context, sys *ragchat.System) error {
		bot, err := sys.NewChatbot()
		if err != nil {
			return err
		}
		addr := c.String("addr")
		if addr == "" {
			addr = sys.Config().Server.Addr
		}
		srv := server.New(bot, server.WithAllowOrigin(sys.Config().Server.AllowOrigin))
		return srv.Run(ctx, addr)
	})
}

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a question is required")
	}
	session := c.String("session")
	if session == "" {
		session = uuid.NewString()
	}

	return withSystem(c, func(ctx context.Context, sys *ragchat.System) error {
		bot, err := sys.NewChatbot()
		if err != nil {
			return err
		}
		resp, err := bot.Respond(ctx, session, query)
		if err != nil {
			return err
		}
		out := c.App.Writer
		fmt.Fprintln(out, resp.Text)
		fmt.Fprintf(out, "\nsession: %s\ntimestamp: %d\n", resp.SessionID, resp.Timestamp)
		return nil
	})
}

func historyCommand(c *cli.Context) error {
	return withSystem(c, func(ctx context.Context, sys *ragchat.System) error {
		store, err := sys.ConversationStore()
		if err != nil {
			return err
		}
		history, err := store.History(ctx, c.String("session"))
		if err != nil {
			return err
		}
		out := c.App.Writer
		for _, msg := range history {
			fmt.Fprintf(out, "[%d] %s: %s\n", msg.Timestamp, msg.Role.Label(), msg.Content)
		}
		return nil
	})
}

func feedbackCommand(c *cli.Context) error {
	fb := core.Feedback{Rating: c.String("rating"), Text: c.String("text")}
	if err := core.ValidateFeedback(fb); err != nil {
		return fmt.Errorf("either --rating or --text is required: %w", err)
	}
	return withSystem(c, func(ctx context.Context, sys *ragchat.System) error {
		store, err := sys.ConversationStore()
		if err != nil {
			return err
		}
		if err := store.Feedback(ctx, c.String("session"), c.Int64("timestamp"), fb); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "Feedback saved")
		return nil
	})
}

func seedCommand(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	passages, err := readSeedFile(f)
	if err != nil {
		return err
	}

	return withSystem(c, func(ctx context.Context, sys *ragchat.System) error {
		n, err := sys.SeedPassages(ctx, passages)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Seeded %d passages\n", n)
		return nil
	})
}

// readSeedFile parses one SeedPassage per non-blank line.
func readSeedFile(r io.Reader) ([]ragchat.SeedPassage, error) {
	var passages []ragchat.SeedPassage
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var p ragchat.SeedPassage
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		passages = append(passages, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return passages, nil
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
