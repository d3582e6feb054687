package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/logging"
	"github.com/nari/actlog/internal/parser"
	"github.com/nari/actlog/internal/storage"
	"github.com/nari/actlog/internal/worker"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Decode a log into the configured storage backend",
		Long: `Decode ability and status list lines from an ACT network log and write
them to the storage backend named by storage.type (memory, sqlite, postgres
or influx).

Example:
  actlog ingest Network_26202_20220209.log
  actlog ingest --config /etc/actlog Network_26202_20220209.log`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) (err error) {
	start := time.Now()
	source := args[0]

	logCfg := config.GetLoggingConfig()
	var logOut io.Writer = cmd.ErrOrStderr()
	if logCfg.Dir != "" {
		if err := os.MkdirAll(logCfg.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		f, err := os.Create(logging.LogFilePath(logCfg.Dir, "actlog", start))
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	opts := logging.Options{File: logOut, Level: logCfg.Level}
	if logCfg.GraylogEnabled {
		opts.GraylogAddress = logCfg.GraylogAddress
	}
	slogManager := logging.NewSlogManager()
	if err := slogManager.Setup(opts); err != nil {
		return err
	}
	defer slogManager.Close()
	logger := slogManager.Logger()

	sessionID := ksuid.New().String()
	logger = logger.With("session", sessionID)

	backend, err := storage.NewBackend(config.GetStorageConfig(), storage.Dependencies{
		SessionID:  sessionID,
		Source:     filepath.Base(source),
		Logger:     logger,
		ZeroLogger: logging.NewZerolog(logOut, logCfg.Level, "influx"),
	})
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close storage: %w", cerr)
		}
		if err == nil {
			if exp, ok := backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", exp.ExportedFilePath())
			}
		}
	}()

	checksumCfg := config.GetChecksumConfig()
	mgr, err := worker.NewManager(worker.Dependencies{
		Parser:            parser.NewParser(logger, parser.WithLenient(config.GetParserConfig().Lenient)),
		Logger:            logger,
		DispatchLogger:    logging.NewDispatcherLogger(logging.NewZerolog(logOut, logCfg.Level, "dispatcher")),
		ChecksumAlgorithm: checksumCfg.Algorithm,
		EnforceChecksum:   checksumCfg.Enforce,
		BufferSize:        config.GetWorkerConfig().BufferSize,
	}, backend)
	if err != nil {
		return err
	}

	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	summary, err := mgr.Ingest(ctx, f)
	printSummary(cmd.OutOrStdout(), sessionID, summary)
	return err
}

func printSummary(w io.Writer, sessionID string, s worker.Summary) {
	fmt.Fprintf(w, "session           %s\n", sessionID)
	fmt.Fprintf(w, "lines             %d\n", s.Lines)
	fmt.Fprintf(w, "decoded           %d\n", s.Decoded)
	fmt.Fprintf(w, "skipped           %d\n", s.Skipped)
	fmt.Fprintf(w, "checksum failures %d\n", s.ChecksumFailures)
	fmt.Fprintf(w, "decode errors     %d\n", s.DecodeErrors)
	fmt.Fprintf(w, "sink errors       %d\n", s.SinkErrors)
	fmt.Fprintf(w, "dropped           %d\n", s.Dropped)
}
