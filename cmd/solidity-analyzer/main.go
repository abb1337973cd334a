// Command solidity-analyzer runs the Solidity language server over
// stdio, the way an editor's LSP client expects to launch it.
package main

import (
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	serverpkg "github.com/lumosimmo/solidity-analyzer/internal/server"
	"github.com/lumosimmo/solidity-analyzer/internal/toolchain"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "solidity-analyzer",
		Usage:   "Solidity language server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "minimum level to log at: debug, info, warn, error",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the language server over stdio",
				Action: serveCommand,
			},
			{
				Name:  "version",
				Usage: "print the server version",
				Action: func(c *cli.Context) error {
					pterm.Println(version)
					return nil
				},
			},
		},
		Action: serveCommand,
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Printfln("solidity-analyzer: %v", err)
		os.Exit(1)
	}
}

func serveCommand(c *cli.Context) error {
	log := newLogger(c.String("log-level"))

	core := serverpkg.NewCore(afero.NewOsFs(), log)
	discoverToolchain(core, log)

	srv := serverpkg.NewServer(core, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("signal received, shutting down")
		_ = srv.Close()
	}()

	pterm.Info.Printfln("solidity-analyzer %s listening on stdio", version)
	return srv.RunStdio()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// LSP clients read stdout as the JSON-RPC stream; logs go to stderr.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

var solcVersionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// discoverToolchain looks for a solc binary on PATH and records what it
// finds on core's toolchain tracker. Installing solc is out of scope;
// this only decides whether solidity-analyzer.installFoundrySolc and the
// toolchain.promptInstall banner have anything to report.
func discoverToolchain(core *serverpkg.Core, log *slog.Logger) {
	path, err := exec.LookPath("solc")
	if err != nil {
		core.Toolchain().Set(toolchain.Status{Kind: toolchain.Missing})
		return
	}

	out, err := exec.Command(path, "--version").Output()
	version := ""
	if err == nil {
		version = solcVersionPattern.FindString(string(out))
	}
	core.Toolchain().Set(toolchain.Status{Kind: toolchain.Found, Path: path, Version: version})
	log.Info("found solc", slog.String("path", path), slog.String("version", version))
}
