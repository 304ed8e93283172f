package main

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/adapters"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/config"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resources"
)

// maxLineSize bounds one comment read from batch input
const maxLineSize = 1 << 20

// Exit codes
const (
	exitFailure  = 1
	exitResource = 2 // resource files missing or malformed
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.IsResourceError(err) {
		return exitResource
	}
	return exitFailure
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sentiment",
		Usage: "classify English, Hindi and code-mixed comments as positive, negative or neutral",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pretty", Usage: "indent JSON output"},
			&cli.StringFlag{
				Name:    "metrics",
				EnvVars: []string{"METRICS_FILE"},
				Usage:   "write Prometheus metrics in text format to `FILE` when done, - for stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze one text given as arguments or on stdin",
				ArgsUsage: "[text...]",
				Action:    analyzeAction,
			},
			{
				Name:  "batch",
				Usage: "analyze one comment per line and report per-sentiment counts",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read comments from `FILE` instead of stdin"},
				},
				Action: batchAction,
			},
		},
	}
}

// service is the wired pipeline for one CLI invocation
type service struct {
	analyzer *analysis.Analyzer
	client   *adapters.HuggingFaceClient
	logger   *monitoring.Logger
	health   *resilience.HealthTracker
	registry *prometheus.Registry
}

func setup(c *cli.Context) (*service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := monitoring.NewLoggerWithOptions(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)

	res, err := loadResources(cfg.ResourceDir)
	if err != nil {
		if appErr := errors.ToAppError(err); appErr != nil {
			errors.LogError(logger.Logger, appErr)
		}
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	health := resilience.NewHealthTracker("huggingface", resilience.DefaultHealthConfig(), nil, logger.Logger)

	client := adapters.NewHuggingFaceClient(adapters.HuggingFaceConfig{
		BaseURL:           cfg.HFAPIURL,
		Model:             cfg.HFModel,
		Token:             cfg.HFAPIToken,
		Timeout:           cfg.ClassifierTimeout,
		RequestsPerSecond: cfg.ClassifierRPS,
		Breaker:           cfg.Breaker(),
	})

	analyzer, err := analysis.NewAnalyzer(res, client, cfg.Analyzer(),
		analysis.WithLogger(logger),
		analysis.WithMetrics(metrics),
		analysis.WithHealthTracker(health),
	)
	if err != nil {
		return nil, err
	}

	logger.SystemLogger("startup", fmt.Sprintf("model=%s cache_size=%d", client.Model(), cfg.CacheSize))
	return &service{
		analyzer: analyzer,
		client:   client,
		logger:   logger,
		health:   health,
		registry: registry,
	}, nil
}

func loadResources(dir string) (*resources.Resources, error) {
	if dir == "" {
		return resources.LoadEmbedded()
	}
	return resources.LoadDir(dir)
}

func analyzeAction(c *cli.Context) error {
	svc, err := setup(c)
	if err != nil {
		return err
	}

	text := strings.Join(c.Args().Slice(), " ")
	if c.NArg() == 0 {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return errors.WrapError(err, "failed to read stdin")
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	result := svc.analyzer.Analyze(c.Context, text)
	if err := writeJSON(c, result); err != nil {
		return err
	}
	return svc.writeMetrics(c)
}

func batchAction(c *cli.Context) error {
	svc, err := setup(c)
	if err != nil {
		return err
	}

	in := c.App.Reader
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.WrapError(err, "failed to open %s", path)
		}
		defer errors.SafeClose(f, path)
		in = f
	}

	texts, err := readLines(in)
	if err != nil {
		return err
	}

	report := svc.analyzer.AnalyzeBatch(c.Context, texts)
	svc.logClassifierHealth(report.ID)
	if err := writeJSON(c, report); err != nil {
		return err
	}
	return svc.writeMetrics(c)
}

// logClassifierHealth reports how the classifier held up over a batch
func (s *service) logClassifierHealth(batchID string) {
	h := s.health.Health()
	attrs := []any{
		"batch_id", batchID,
		"level", h.Level.String(),
		"error_rate", h.ErrorRate,
		"transient_errors", h.TransientErrors,
		"breaker_state", s.client.BreakerState().String(),
		"cache", s.analyzer.CacheStats(),
	}
	if h.LastError != "" {
		attrs = append(attrs, "last_error", h.LastError)
	}

	switch {
	case !s.health.Available():
		s.logger.Error("Classifier unavailable during batch", attrs...)
	case h.Level != resilience.LevelNormal:
		s.logger.Warn("Classifier degraded during batch", attrs...)
	default:
		s.logger.Debug("Classifier healthy during batch", attrs...)
	}
}

// writeMetrics dumps the registry in the Prometheus text format to the
// --metrics destination, if one was given
func (s *service) writeMetrics(c *cli.Context) error {
	path := c.String("metrics")
	if path == "" {
		return nil
	}

	families, err := s.registry.Gather()
	if err != nil {
		return errors.WrapError(err, "failed to gather metrics")
	}

	w := c.App.ErrWriter
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return errors.WrapError(err, "failed to create %s", path)
		}
		defer errors.SafeClose(f, path)
		w = f
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.WrapError(err, "failed to write metrics")
		}
	}
	return nil
}

// readLines returns the non-blank lines of r
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return nil, errors.NewValidationError(fmt.Sprintf("comment longer than %d bytes", maxLineSize), len(lines)+1)
		}
		return nil, errors.WrapError(err, "failed to read comments")
	}
	return lines, nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetEscapeHTML(false)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
