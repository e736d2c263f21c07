// Утилита конвертации документов Carbon в HTML. Читает JSON документа из файла или stdin
// и пишет HTML в файл или stdout, либо запускает HTTP API конвертера (-serve).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/candybanana/carbon-json-to-html/internal/carbon"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/attrrules"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/config"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/converter"
	policy "github.com/candybanana/carbon-json-to-html/internal/carbon/sanitize-policy"
)

var version string = "DEV"

// insertFlags - повторяемый флаг -insert N=file.html.
type insertFlags map[int]string

func (f insertFlags) String() string {
	keys := make([]int, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d=%s", k, f[k]))
	}
	return strings.Join(parts, ",")
}

func (f insertFlags) Set(v string) error {
	idxStr, path, ok := strings.Cut(v, "=")
	if !ok || path == "" {
		return fmt.Errorf("expected N=file, got %q", v)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
	if err != nil || idx < 1 {
		return fmt.Errorf("paragraph index must be a positive integer, got %q", idxStr)
	}
	f[idx] = path
	return nil
}

// Пример запуска: carbon -in post.json -insert 2=ad.html -minify
func main() {
	in := flag.String("in", "-", "Input Carbon JSON file, - for stdin")
	out := flag.String("out", "-", "Output HTML file, - for stdout")
	attrsPath := flag.String("attrs", "", "YAML file with format attribute rules")
	minify := flag.Bool("minify", false, "Minify output HTML")
	sanitizeRaw := flag.Bool("sanitize-raw", false, "Sanitize HTMLComponent content")
	serve := flag.Bool("serve", false, "Start HTTP API instead of converting a file")
	trace := flag.Bool("trace", false, "Verbose logs")
	inserts := insertFlags{}
	flag.Var(inserts, "insert", "Custom insert N=file.html before paragraph N (repeatable)")
	flag.Parse()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))
	}

	cfg := config.ReadConfig()
	if *attrsPath != "" {
		cfg.AttrRulesPath = *attrsPath
	}
	if *minify {
		cfg.Minify = true
	}
	if *sanitizeRaw {
		cfg.SanitizeRawHTML = true
	}

	conv, err := newConverter(cfg)
	if err != nil {
		slog.Error("Fail init converter", "err", err)
		os.Exit(1)
	}

	if *serve {
		if err := runServer(cfg, conv); err != nil {
			slog.Error("Server fail", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(conv, cfg, *in, *out, inserts); err != nil {
		slog.Error("Conversion failed", "err", err, "kind", apierrors.KindOf(err))
		os.Exit(exitCode(err))
	}
}

func newConverter(cfg *config.Config) (*converter.Converter, error) {
	var opts []converter.Option

	if cfg.AttrRulesPath != "" {
		rules, err := attrrules.Load(cfg.AttrRulesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, converter.WithCustomAttrs(rules.Generators()))
	}

	if cfg.SanitizeRawHTML {
		opts = append(opts, converter.WithRawHTMLPolicy(policy.UgcPolicy))
	}

	return converter.New(opts...), nil
}

func run(conv *converter.Converter, cfg *config.Config, inPath, outPath string, files insertFlags) error {
	inserts, err := loadInserts(files)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	html, err := conv.ConvertReader(r, inserts)
	if err != nil {
		return err
	}

	if cfg.Minify {
		if html, err = converter.Minify(html); err != nil {
			return err
		}
	}

	if outPath == "-" {
		_, err = fmt.Fprintln(os.Stdout, html)
		return err
	}
	return os.WriteFile(outPath, []byte(html+"\n"), 0o644)
}

func loadInserts(files insertFlags) (converter.CustomInserts, error) {
	if len(files) == 0 {
		return nil, nil
	}

	res := make(converter.CustomInserts, len(files))
	for idx, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		insert, err := converter.InsertHTML(string(data))
		if err != nil {
			return nil, apierrors.ErrInvalidInsert.WithFormattedMessage(strconv.Itoa(idx))
		}
		res[idx] = insert
	}
	return res, nil
}

func runServer(cfg *config.Config, conv *converter.Converter) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := carbon.NewServer(cfg, conv, version)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// exitCode выбирает код выхода по виду ошибки.
func exitCode(err error) int {
	switch apierrors.KindOf(err) {
	case apierrors.KindParse:
		return 2
	case apierrors.KindStructure:
		return 3
	case apierrors.KindSanitize:
		return 4
	default:
		return 1
	}
}
