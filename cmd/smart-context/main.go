// Command smart-context is the CLI entry point, grounded on the teacher's
// cmd/lci/main.go: a single urfave/cli App in which each subcommand (and
// the MCP server command) loads configuration and builds its own *app.App
// through buildApp.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/smart-context/internal/app"
	"github.com/standardbeagle/smart-context/internal/config"
	"github.com/standardbeagle/smart-context/internal/edit"
	"github.com/standardbeagle/smart-context/internal/logging"
	"github.com/standardbeagle/smart-context/internal/search"
)

var log = logging.Component("cli")

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		root = cwd
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", root, err)
	}
	if c.Bool("recency") {
		cfg.Search.EnableRecencySignal = true
	}
	return cfg, nil
}

func buildApp(c *cli.Context) (*app.App, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Scan(context.Background()); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	return a, nil
}

func main() {
	cliApp := &cli.App{
		Name:  "smart-context",
		Usage: "incremental code index, hybrid search, safe edits, and a unified context graph for AI coding assistants",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root directory (default: current directory)",
			},
			&cli.BoolFlag{
				Name:  "recency",
				Usage: "enable the supplemental git-churn ranking signal for this invocation",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			editCommand(),
			undoCommand(),
			redoCommand(),
			scanCommand(),
			mcpCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "smart-context: %v\n", err)
		os.Exit(1)
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "index the project root and report file/symbol counts",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.Close()
			symbols := 0
			for _, rec := range a.Store.All() {
				symbols += len(rec.Symbols)
			}
			fmt.Printf("indexed %d files, %d symbols\n", a.Store.Len(), symbols)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "hybrid symbol/trigram/filename/vector search",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max", Aliases: []string{"m"}, Usage: "maximum results", Value: 0},
			&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "output as JSON"},
			&cli.BoolFlag{Name: "vector", Usage: "include the vector signal in candidate collection"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("usage: smart-context search <query>")
			}
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.Search.Search(context.Background(), c.Args().First(), search.Options{
				MaxResults:           c.Int("max"),
				GroupByFile:          true,
				DeduplicateByContent: true,
				UseVector:            c.Bool("vector"),
			})

			if c.Bool("json") {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			if result.Degraded {
				fmt.Fprintf(os.Stderr, "warning: degraded results (%s)\n", result.Reason)
			}
			for _, m := range result.Matches {
				fmt.Printf("%s  score=%.3f\n", m.FilePath, m.Score)
				if m.Preview != "" {
					fmt.Printf("    %s\n", m.Preview)
				}
			}
			return nil
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "replace one exact/fuzzy-matched string in a file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Usage: "text to find", Required: true},
			&cli.StringFlag{Name: "replacement", Usage: "replacement text", Required: true},
			&cli.BoolFlag{Name: "dry-run", Usage: "validate without writing"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("usage: smart-context edit <file> --target ... --replacement ...")
			}
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Edit.ApplyEdits(c.Args().First(), []edit.Descriptor{{
				TargetString:      c.String("target"),
				ReplacementString: c.String("replacement"),
			}}, c.Bool("dry-run"))
			if err != nil {
				return err
			}
			fmt.Printf("applied: %v\n", result.Success)
			return nil
		},
	}
}

func undoCommand() *cli.Command {
	return &cli.Command{
		Name:  "undo",
		Usage: "revert the most recent edit or batch",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Edit.Undo()
		},
	}
}

func redoCommand() *cli.Command {
	return &cli.Command{
		Name:  "redo",
		Usage: "reapply the most recently undone edit or batch",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Edit.Redo()
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "start the MCP server over stdio",
		Action: func(c *cli.Context) error {
			a, err := buildApp(c)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Watch(); err != nil {
				log.Warn("file watching unavailable", "error", err)
			}

			srv := newMCPServer(a)
			return srv.Start(context.Background())
		},
	}
}
