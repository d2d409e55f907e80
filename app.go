package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexandro/fileassistant/agent"
	"github.com/lexandro/fileassistant/config"
	"github.com/lexandro/fileassistant/llm"
	"github.com/lexandro/fileassistant/register"
	"github.com/lexandro/fileassistant/server"
	"github.com/lexandro/fileassistant/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// App is the fileassist command tree.
type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logFile    string
}

// NewApp creates the CLI application.
func NewApp() *App {
	app := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "fileassist",
		Short: "Gemini-driven assistant for files in Downloads and Desktop",
		Long: `fileassist lets a Gemini model search, inspect, write, move and delete
files under a few configured folders through a fixed set of tools.

Run "fileassist chat" for the terminal assistant, "fileassist serve" for the
HTTP endpoint or "fileassist mcp" to expose the tools to an MCP client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := app.root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	flags.StringVar(&app.logFile, "log-file", "", "Log file path (default: stderr)")

	app.root.AddCommand(
		app.newChatCmd(),
		app.newServeCmd(),
		app.newMCPCmd(),
		app.newIndexCmd(),
		app.newRegisterCmd(),
		app.newVersionCmd(),
	)

	return app
}

// WithIO sets custom input and output streams.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetIn(stdin)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI until the command returns or the process is interrupted.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// loadConfig reads the configuration and applies the logging flags on top of it.
func (a *App) loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}
	return cfg, setupLogger(cfg.LogLevel, cfg.LogFile), nil
}

func newModel(cfg *config.Config) (llm.Model, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	client, err := llm.NewGeminiClient(llm.GeminiConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *App) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive terminal assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadConfig()
			if err != nil {
				return err
			}
			model, err := newModel(cfg)
			if err != nil {
				return err
			}
			asst, err := newAssistant(cfg, model, logger)
			if err != nil {
				return err
			}
			stop := asst.startConsistencyLoops(cmd.Context())
			defer stop()

			return runChat(cmd.Context(), asst.agent, agent.NewSession("repl"), a.stdin, a.stdout)
		},
	}
}

func (a *App) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			model, err := newModel(cfg)
			if err != nil {
				return err
			}
			asst, err := newAssistant(cfg, model, logger)
			if err != nil {
				return err
			}
			stop := asst.startConsistencyLoops(cmd.Context())
			defer stop()

			httpServer := server.NewHTTPServer(asst.agent, cfg.Roots, logger)
			return httpServer.ListenAndServe(cmd.Context(), cfg.ListenAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr)")
	return cmd
}

func (a *App) newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the file tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadConfig()
			if err != nil {
				return err
			}
			startTime := time.Now()
			logger.Info("starting fileassist mcp", "roots", cfg.Roots, "index", cfg.IndexPath)

			// Tools are called directly, so no model credential is needed.
			asst, err := newAssistant(cfg, nil, logger)
			if err != nil {
				return err
			}
			stop := asst.startConsistencyLoops(cmd.Context())
			defer stop()

			handler := &tools.Handler{
				Agent:   asst.agent,
				Session: agent.NewSession("mcp"),
				Logger:  logger,
			}
			statusHandler := &tools.StatusHandler{
				Index:     asst.agent.Index(),
				Roots:     cfg.Roots,
				IndexPath: cfg.IndexPath,
				StartTime: startTime,
				Logger:    logger,
			}
			reindexHandler := &tools.ReindexHandler{
				DoReindex: asst.reindex,
				Logger:    logger,
			}

			mcpServer := server.SetupMCP(handler, statusHandler, reindexHandler)

			logger.Info("MCP server starting on stdio")
			if err := mcpServer.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("MCP server: %w", err)
			}
			return nil
		},
	}
}

func (a *App) newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild and persist the file index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadConfig()
			if err != nil {
				return err
			}
			asst, err := newAssistant(cfg, nil, logger)
			if err != nil {
				return err
			}

			start := time.Now()
			count, err := asst.agent.Reindex(cmd.Context())
			if err != nil {
				return fmt.Errorf("rebuilding index: %w", err)
			}
			fmt.Fprintf(a.stdout, "Indexed %d files into %s in %s\n",
				count, cfg.IndexPath, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func (a *App) newRegisterCmd() *cobra.Command {
	var serverName string
	var binaryPath string

	cmd := &cobra.Command{
		Use:   "register <project|user> [dir] [-- server-args...]",
		Short: "Register fileassist as an MCP server for Claude",
		Long: `Writes an mcpServers entry that launches "fileassist mcp".

  project  writes .mcp.json in dir (default: current directory)
  user     writes ~/.claude.json

Arguments after -- are appended to the server command line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, serverArgs := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				positional, serverArgs = args[:dash], args[dash:]
			}
			if len(positional) == 0 || len(positional) > 2 {
				return fmt.Errorf("expected <project|user> [dir], got %d arguments", len(positional))
			}

			opts := register.Options{
				Scope:      positional[0],
				ServerName: serverName,
				ServerArgs: serverArgs,
				BinaryPath: binaryPath,
			}
			if len(positional) == 2 {
				if opts.Scope != register.ScopeProject {
					return fmt.Errorf("a directory is only accepted for the %q scope", register.ScopeProject)
				}
				opts.Directory = positional[1]
			}

			configPath, err := register.Run(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Registered MCP server in %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverName, "name", "", "Server name (default: derived from the binary name)")
	cmd.Flags().StringVar(&binaryPath, "binary", "", "Binary to launch (default: this executable)")
	return cmd
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "fileassist version %s\n", server.Version)
		},
	}
}
