package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-wfd/wfdsource"
	"github.com/go-wfd/wfdsource/internal/appconfig"
	"github.com/go-wfd/wfdsource/internal/wfdlog"
	"github.com/go-wfd/wfdsource/pkg/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the source-side RTSP server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(configPath)
	},
}

// logHandler implements the wfdsource.Handler lifecycle interfaces by
// logging each event; it is the daemon's default handler in the absence
// of an embedding application supplying its own.
type logHandler struct {
	log *slog.Logger
}

func (h *logHandler) OnOptionsRequestDone(ctx *wfdsource.OnOptionsRequestDoneCtx) {
	h.log.Info("options exchange complete", "session", ctx.Session.ID)
}

func (h *logHandler) OnGetParameterRequestDone(ctx *wfdsource.OnGetParameterRequestDoneCtx) {
	h.log.Info("capability negotiation complete",
		"session", ctx.Session.ID,
		"audio_format", ctx.Negotiated.AudioFormat,
		"video_resolution", ctx.Negotiated.VideoResolution,
	)
}

func (h *logHandler) OnPlayingDone(ctx *wfdsource.OnPlayingDoneCtx) {
	h.log.Info("session playing", "session", ctx.Session.ID)
}

func (h *logHandler) OnKeepaliveFail(ctx *wfdsource.OnKeepaliveFailCtx) {
	h.log.Warn("keepalive failed", "session", ctx.Session.ID, "error", ctx.Error)
}

func (h *logHandler) OnDirectStreamEnd(ctx *wfdsource.OnDirectStreamEndCtx) {
	h.log.Info("hot-swap to live source complete", "session", ctx.Session.ID, "error", ctx.Error)
}

func (h *logHandler) OnSessionClosed(ctx *wfdsource.OnSessionClosedCtx) {
	h.log.Info("session ended", "session", ctx.Session.ID, "error", ctx.Error)
}

func runServe(path string) error {
	cfg, err := appconfig.Load(path)
	if err != nil {
		return fmt.Errorf("wfdsourced: %w", err)
	}

	logger, err := wfdlog.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("wfdsourced: %w", err)
	}

	sourceCapability := cfg.Source.ToCapability()

	server, err := wfdsource.New(cfg.Server, sourceCapability, &logHandler{log: logger}, logger)
	if err != nil {
		return fmt.Errorf("wfdsourced: build server: %w", err)
	}
	server.Runtime = pipeline.NewLogRuntime(logger)

	if err := server.Start(); err != nil {
		return fmt.Errorf("wfdsourced: start server: %w", err)
	}
	logger.Info("wfdsourced listening", "addr", cfg.Server.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	return server.Close()
}
