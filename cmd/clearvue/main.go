package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/basket/clearvue/internal/bus"
	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/config"
	clearvueotel "github.com/basket/clearvue/internal/otel"
	"github.com/basket/clearvue/internal/persistence"
	"github.com/basket/clearvue/internal/report"
	"github.com/basket/clearvue/internal/session"
	"github.com/basket/clearvue/internal/shared"
	"github.com/basket/clearvue/internal/telemetry"
	"github.com/basket/clearvue/internal/tui"
	"github.com/basket/clearvue/internal/verifier"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=..."
var Version = "v0.3-dev"

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage of %s:

INTERACTIVE MODE (default):
  %s                          Run a diagnostic walkthrough in the terminal

SUBCOMMANDS:
  %s report <action>          Manage stored reports
                              Actions: list, show <id>, export <id> [-text]
  %s doctor [-json]           Run environment checks
  %s version                  Print the version

FLAGS:
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
ENVIRONMENT VARIABLES:
  CLEARVUE_HOME           Data directory (default: ~/.clearvue)
  CLEARVUE_CATALOG        Battery variant: iphone, iphone_extended, browser
  CLEARVUE_CATALOG_FILE   Custom catalog YAML (overrides variant)
  CLEARVUE_LENS_URL       Lens analysis endpoint
  CLEARVUE_IMEI_URL       IMEI/TAC lookup endpoint
  CLEARVUE_DEMO_MODE      Set to 1 to label runs as off-device

EXAMPLES:
  Run diagnostics:        %s
  Extended battery:       CLEARVUE_CATALOG=iphone_extended %s
  List stored reports:    %s report list
  Environment checks:     %s doctor
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	loadDotEnv(".env")

	flag.Usage = printUsage
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args := flag.Args(); len(args) > 0 {
		switch strings.ToLower(strings.TrimSpace(args[0])) {
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		case "report":
			os.Exit(runReportCommand(ctx, args[1:]))
		case "doctor":
			os.Exit(runDoctorCommand(ctx, args[1:]))
		case "version":
			fmt.Println(Version)
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
			printUsage()
			os.Exit(2)
		}
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd())
	if !interactive {
		fmt.Fprintln(os.Stderr, "clearvue needs a terminal; use the report/doctor subcommands otherwise")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalStartup(nil, "E_CONFIG_LOAD", err)
	}

	// Quiet logs (file-only) so the walkthrough screen stays clean.
	logger, closer, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel, true)
	if err != nil {
		fatalStartup(nil, "E_LOGGER_INIT", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("startup phase", "phase", "config_loaded", "fingerprint", cfg.Fingerprint())

	if cfg.FirstRun {
		if err := config.Save(cfg); err != nil {
			fatalStartup(logger, "E_CONFIG_WRITE", err)
		}
		logger.Info("config.yaml written with defaults", "home", cfg.HomeDir)
	}

	otelProvider, err := clearvueotel.Init(ctx, cfg.Otel)
	if err != nil {
		fatalStartup(logger, "E_OTEL_INIT", err)
	}
	defer otelProvider.Shutdown(context.Background())
	metrics, err := clearvueotel.NewMetrics(otelProvider.Meter)
	if err != nil {
		fatalStartup(logger, "E_OTEL_INIT", err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		fatalStartup(logger, "E_CATALOG_LOAD", err)
	}
	logger.Info("catalog loaded", "variant", cfg.Catalog.Variant, "file", cfg.Catalog.File, "tests", cat.Len())

	store, err := persistence.Open(config.DBPath(cfg.HomeDir))
	if err != nil {
		fatalStartup(logger, "E_STORE_OPEN", err)
	}
	defer store.Close()
	logger.Info("startup phase", "phase", "schema_migrated")

	if cfg.RetentionReportsDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.RetentionReportsDays)
		if pruned, err := store.PruneReports(ctx, cutoff); err != nil {
			logger.Warn("report retention failed", "error", err)
		} else if pruned > 0 {
			logger.Info("report retention completed", "pruned", pruned)
		}
	}

	eventBus := bus.New()
	sessionID := shared.NewSessionID()
	ctx = shared.WithSessionID(ctx, sessionID)

	// Mirror session events into the structured log and metrics.
	sub := eventBus.Subscribe("")
	defer eventBus.Unsubscribe(sub)
	go logBusEvents(ctx, sub, logger.With("session_id", sessionID), metrics)

	confWatcher := config.NewWatcher(cfg.HomeDir, cfg.Catalog.File, logger)
	if err := confWatcher.Start(ctx); err != nil {
		fatalStartup(logger, "E_CONFIG_WATCHER_START", err)
	}
	go func() {
		for ev := range confWatcher.Events() {
			// Settings apply on the next run; the active session keeps its
			// catalog and endpoints.
			logger.Info("config change noticed, applies to the next run", "path", ev.Path)
		}
	}()

	var lens verifier.LensVerifier
	if lensClient, err := verifier.NewLensClient(cfg.Lens.Endpoint, time.Duration(cfg.Lens.TimeoutSeconds)*time.Second); err != nil {
		logger.Warn("lens analysis disabled", "error", err)
	} else {
		lens = lensClient
	}
	tac := verifier.NewTACClient(cfg.IMEI.Endpoint, time.Duration(cfg.IMEI.TimeoutSeconds)*time.Second)

	sess := session.New(cat)
	start := time.Now()
	rep, err := tui.Run(ctx, tui.Deps{
		Session:      sess,
		Builder:      report.NewBuilder(),
		Lens:         lens,
		TAC:          tac,
		Bus:          eventBus,
		SessionID:    sessionID,
		DemoMode:     cfg.DemoMode,
		CapturePhoto: capturePhotoFromDir(cfg.HomeDir),
	})
	if err != nil && ctx.Err() == nil {
		fatalStartup(logger, "E_WALKTHROUGH", err)
	}
	if rep == nil {
		logger.Info("walkthrough ended without a report", "session_id", sessionID)
		return
	}

	metrics.SessionDuration.Record(ctx, time.Since(start).Seconds())
	if err := store.SaveReport(ctx, sessionID, rep); err != nil {
		fatalStartup(logger, "E_REPORT_SAVE", err)
	}
	eventBus.Publish(bus.TopicReportSaved, bus.ReportEvent{
		SessionID: sessionID,
		ReportID:  rep.ID,
		PassCount: rep.PassCount,
		FailCount: rep.FailCount,
	})
	logger.Info("report saved", "report_id", rep.ID, "pass", rep.PassCount, "fail", rep.FailCount)
	fmt.Printf("Report %s saved. View it with: %s report show %s\n", rep.ID, os.Args[0], rep.ID)
}

// capturePhotoFromDir reads staged lens photos from <home>/captures. The
// terminal has no camera; a station operator drops front.jpg / back.jpg
// there before starting the run.
func capturePhotoFromDir(homeDir string) func(catalog.CameraPosition) (string, error) {
	return func(position catalog.CameraPosition) (string, error) {
		path := filepath.Join(homeDir, "captures", string(position)+".jpg")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("no staged photo at %s: %w", path, err)
		}
		return base64.StdEncoding.EncodeToString(data), nil
	}
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.File != "" {
		return catalog.LoadFile(cfg.Catalog.File)
	}
	cat, ok := catalog.Variant(cfg.Catalog.Variant)
	if !ok {
		return nil, fmt.Errorf("unknown catalog variant %q", cfg.Catalog.Variant)
	}
	return cat, nil
}

// logBusEvents drains the bus subscription into the log and metric
// instruments until the subscription closes.
func logBusEvents(ctx context.Context, sub *bus.Subscription, logger *slog.Logger, metrics *clearvueotel.Metrics) {
	for ev := range sub.Ch() {
		switch payload := ev.Payload.(type) {
		case bus.TestRecordedEvent:
			logger.Info("test recorded", "test_id", payload.TestID, "status", payload.Status,
				"progress", fmt.Sprintf("%d/%d", payload.Cursor, payload.Total))
			metrics.TestsRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("status", payload.Status)))
		case bus.SessionEvent:
			logger.Info(ev.Topic, "cursor", payload.Cursor, "total", payload.Total)
			if ev.Topic == bus.TopicSessionWentBack || ev.Topic == bus.TopicSessionRepeated {
				metrics.NavigationsBack.Add(ctx, 1)
			}
		case bus.ReportEvent:
			logger.Info(ev.Topic, "report_id", payload.ReportID, "pass", payload.PassCount, "fail", payload.FailCount)
			if ev.Topic == bus.TopicReportBuilt {
				metrics.ReportsBuilt.Add(ctx, 1)
			}
		case bus.VerifierEvent:
			if payload.Err != "" {
				logger.Warn("verifier call failed", "kind", payload.Kind, "test_id", payload.TestID, "error", payload.Err)
				metrics.VerifierErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", payload.Kind)))
			} else {
				logger.Info("verifier call completed", "kind", payload.Kind, "test_id", payload.TestID)
			}
		default:
			logger.Debug(ev.Topic)
		}
	}
}

func fatalStartup(logger *slog.Logger, reasonCode string, err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	if logger != nil {
		logger.Error("startup failure", "reason_code", reasonCode, "error", message)
	} else {
		fmt.Fprintf(
			os.Stderr,
			`{"timestamp":"%s","level":"ERROR","component":"clearvue","trace_id":"-","msg":"startup failure","reason_code":%q,"error":%q}`+"\n",
			time.Now().UTC().Format(time.RFC3339Nano),
			reasonCode,
			message,
		)
	}
	os.Exit(1)
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
