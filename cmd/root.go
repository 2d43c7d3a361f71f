package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Flakebi/FileSender/internal/config"
	"github.com/Flakebi/FileSender/internal/filesender/bridge"
	fserrors "github.com/Flakebi/FileSender/internal/filesender/errors"
	"github.com/Flakebi/FileSender/internal/filesender/server"
	"github.com/Flakebi/FileSender/internal/filesender/session"
	"github.com/Flakebi/FileSender/internal/filesender/upload"
	"github.com/Flakebi/FileSender/internal/ui"
	"github.com/Flakebi/FileSender/internal/utils"
	"github.com/Flakebi/FileSender/web"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "filesender [files]...",
	Short: "Exchange files and notes with browsers on the local network",
	Long: "FileSender serves a small web page on the local network. Peers can download\n" +
		"the offered files, upload one file at a time and send a text note.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ApplyEnv(cmd.Flags(), os.LookupEnv); err != nil {
			return err
		}
		return cfg.Validate()
	},
	RunE: run,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error("Fail to execute", "error", err)
		os.Exit(1)
	}
}

func init() {
	cfg.BindFlags(rootCmd.Flags())
}

func run(cmd *cobra.Command, args []string) error {
	setupLogging(cfg.Verbose)
	if cfg.Name == "" {
		cfg.Name = utils.GenAlias()
	}

	files, err := offeredFiles(args)
	if err != nil {
		return err
	}

	sess := session.New(cfg.UploadFileName, cfg.UploadSize)
	sess.AppendDownloads(files...)

	acceptor, err := upload.NewAcceptor(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("%w: upload directory: %v", fserrors.ErrConfigInvalid, err)
	}
	assets, err := web.Open(cfg.WebDir)
	if err != nil {
		return fmt.Errorf("%w: web directory: %v", fserrors.ErrConfigInvalid, err)
	}

	br := bridge.New()
	ctrl := ui.NewController(sess, br)
	srv := server.New(server.Options{
		Name:     cfg.Name,
		Session:  sess,
		Acceptor: acceptor,
		Notifier: ctrl,
		Assets:   assets,
	})

	// bind before the UI shows up so a busy port fails fast
	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", fserrors.ErrConfigInvalid, cfg.ListenAddr(), err)
	}

	urls := utils.ShareURLs(cfg.Address, cfg.Port)
	slog.Info("Station ready", "name", cfg.Name, "uploads", acceptor.Dir(), "offered", len(files))
	for _, u := range urls {
		fmt.Println(u)
	}
	if cfg.ShowQR && len(urls) > 0 {
		utils.PrintQR(os.Stdout, urls[0])
	}

	go func() {
		if err := srv.Serve(ln); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		select {
		case <-utils.WaitForSignal():
			slog.Info("Shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Headless {
		err = ui.NewConsole(ctrl, os.Stdin, os.Stdout).Run(ctx, br, urls)
	} else {
		ui.NewWindow(ctrl, cfg.Name).Run(ctx, br, urls)
	}

	if serr := srv.Shutdown(); serr != nil {
		slog.Warn("Fail to stop server", "error", serr)
	}
	return err
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// offeredFiles resolves the command line files to absolute paths.
func offeredFiles(args []string) ([]string, error) {
	files := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", fserrors.ErrConfigInvalid, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", fserrors.ErrConfigInvalid, arg)
		}
		files = append(files, abs)
	}
	return files, nil
}
