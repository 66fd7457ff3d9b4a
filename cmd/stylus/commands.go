package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/stylus/internal/app"
	"github.com/dshills/stylus/internal/term"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stylus",
		Short: "Rich-text editing of HTML documents in the terminal",
		Long: `stylus edits the editable regions of an HTML document in place, with a
floating formatting toolbar, link previews and a link form.

Elements marked with the data-editable attribute are edited; without any,
the whole body is. Use --selector to choose others.

Examples:
  stylus edit page.html                      Edit page.html
  stylus edit page.html -c stylus.toml       Edit with options from a file
  stylus edit page.html --ext hl.lua         Add a toolbar command written in Lua
  stylus serialize page.html --indent        Print the editable content as JSON
  stylus import page.html content.json       Replace the content from JSON`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(versionText())
	root.AddCommand(newEditCmd(), newSerializeCmd(), newImportCmd(), newVersionCmd())
	return root
}

func newEditCmd() *cobra.Command {
	var opts app.Options
	cmd := &cobra.Command{
		Use:   "edit FILE.html",
		Short: "Edit a document in the terminal",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return app.ValidateLogLevel(opts.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return runEdit(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "options file (TOML, YAML or JSON)")
	f.BoolVar(&opts.Watch, "watch", true, "reload the options file when it changes")
	f.StringArrayVar(&opts.Extensions, "ext", nil, "Lua extension script (repeatable)")
	f.StringVar(&opts.StatePath, "state", "", "file that keeps the selection between sessions")
	f.StringVarP(&opts.Selector, "selector", "s", "", "elements to edit (default [data-editable] or body)")
	f.StringToStringVar(&opts.Theme, "theme", nil, "colours by role, e.g. link=#5fafff,quote=#87af87")
	f.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.StringVar(&opts.LogFile, "log-file", "", "append the log to this file")
	return cmd
}

func runEdit(ctx context.Context, opts app.Options) error {
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	screen, err := term.NewScreen()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	if err := application.Attach(screen); err != nil {
		screen.Fini()
		return err
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func newSerializeCmd() *cobra.Command {
	var configPath, selector string
	var indent bool
	cmd := &cobra.Command{
		Use:   "serialize FILE.html",
		Short: "Print the content of the editable elements as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := app.OpenHeadless(args[0], configPath, selector)
			if err != nil {
				return err
			}
			return h.Serialize(cmd.OutOrStdout(), indent)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "options file (TOML, YAML or JSON)")
	f.StringVarP(&selector, "selector", "s", "", "elements to serialize (default [data-editable] or body)")
	f.BoolVar(&indent, "indent", false, "indent the JSON")
	return cmd
}

func newImportCmd() *cobra.Command {
	var configPath, selector string
	cmd := &cobra.Command{
		Use:   "import FILE.html CONTENT.json",
		Short: "Replace the editable content from JSON written by serialize",
		Long: `Replace the content of the editable elements from JSON in the format
written by serialize and save the document. Use - to read the JSON from
standard input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			h, err := app.OpenHeadless(args[0], configPath, selector)
			if err != nil {
				return err
			}
			n, err := h.Import(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d elements in %s\n", n, h.Doc.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "options file (TOML, YAML or JSON)")
	f.StringVarP(&selector, "selector", "s", "", "elements to update (default [data-editable] or body)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, app.NewOperationError("open", path, err)
	}
	return data, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}

func versionText() string {
	return fmt.Sprintf("stylus %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
}
