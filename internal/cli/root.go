// Package cli は todo コマンドのエントリーポイントです。
package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"todo-sample/internal/client"
	"todo-sample/internal/config"
	"todo-sample/internal/ui"
)

// RootCommand は引数なしで実行されたときにTUIを起動するコマンドです。
type RootCommand struct {
	cmd     *cobra.Command
	cfg     config.ClientConfig
	version string
	run     func(ctx context.Context, cfg config.ClientConfig) error
}

// NewRootCommand はフラグとサブコマンドを登録したルートコマンドを作成します。
func NewRootCommand(cfg config.ClientConfig, version string) *RootCommand {
	root := &RootCommand{cfg: cfg, version: version, run: runTUI}

	root.cmd = &cobra.Command{
		Use:   "todo",
		Short: "Terminal client for the Todo List Sample API",
		Long: `todo is a terminal client for the Todo List Sample API.

Sign in (or sign up), then create todos with a name and a description
and mark them done. The list is re-fetched from the server after every change.

CONFIGURATION:
  Flags take priority over environment variables.

    TODO_SERVER_URL    API base URL (default: http://localhost:8080)
    TODO_LOG_FILE      Log file path (default: todo.log)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd.Context(), root.cfg)
		},
	}

	flags := root.cmd.PersistentFlags()
	flags.StringVar(&root.cfg.ServerURL, "server", cfg.ServerURL, "API base URL (overrides TODO_SERVER_URL)")
	flags.StringVar(&root.cfg.LogFile, "log-file", cfg.LogFile, "Log file path (overrides TODO_LOG_FILE)")

	root.cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "todo %s\n", root.version)
		},
	})

	return root
}

// Execute はコマンドを実行します。
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func runTUI(ctx context.Context, cfg config.ClientConfig) error {
	// 画面を描画している端末にはログを書けないのでファイルに出す
	f, err := tea.LogToFile(cfg.LogFile, "todo")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	log.Printf("Starting todo client against %s", cfg.ServerURL)
	backend := ui.NewBackend(client.New(cfg.ServerURL, &http.Client{}))
	m := ui.New(backend, ui.Options{Context: ctx, Logger: log.Default()})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}
