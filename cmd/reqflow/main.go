package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/reqflow/internal/app"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/config"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/logging"
	"github.com/GriffinCanCode/reqflow/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/reqflow/internal/interceptors"
	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

type headerFlag map[string]string

func (h headerFlag) String() string {
	parts := make([]string, 0, len(h))
	for k, v := range h {
		parts = append(parts, k+": "+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func (h headerFlag) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header must be NAME: VALUE, got %q", value)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(val)
	return nil
}

type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

// output is the JSON printed for each response.
type output struct {
	Status int                 `json:"status"`
	Header map[string][]string `json:"header,omitempty"`
	Data   any                 `json:"data"`
}

func main() {
	os.Exit(run())
}

func run() int {
	headers := headerFlag{}
	var scripts listFlag

	profilesPath := flag.String("profiles", "", "Profile file (overrides REQFLOW_PROFILES)")
	index := flag.Int("index", -1, "Global config index for this call (default: REQFLOW_DEFAULT_INDEX)")
	baseURL := flag.String("base", "", "Base URL used when the profile file does not exist")
	timeout := flag.Duration("timeout", 0, "Call timeout (default: profile or 3s)")
	insecure := flag.Bool("insecure", false, "Skip TLS certificate verification")
	dataType := flag.String("data-type", "", "Data type (json parses the reply)")
	responseType := flag.String("response-type", "", "Response type (text or arraybuffer)")
	loading := flag.Bool("loading", false, "Show a loading indicator while the call runs")
	envelope := flag.String("envelope", "", "gjson path of the payload in enveloped replies")
	codePath := flag.String("code-path", "", "gjson path of the envelope status code")
	failOnStatus := flag.Bool("fail", false, "Fail on HTTP status 400 or above")
	showHeaders := flag.Bool("i", false, "Include response headers in the output")
	fieldName := flag.String("field", request.DefaultFieldName, "Multipart field name for uploads")
	fileType := flag.String("file-type", "", "Upload content type (sniffed when empty)")
	formData := flag.String("form", "", "JSON object of extra upload form fields")
	printMetrics := flag.Bool("metrics", false, "Print call metrics to stderr on exit")
	trace := flag.Bool("trace", false, "Propagate X-Trace-ID headers and log a span per call")
	flag.Var(headers, "H", "Request header NAME: VALUE (repeatable)")
	flag.Var(&scripts, "script", "JavaScript interceptor file (repeatable)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *profilesPath != "" {
		cfg.Profiles.Path = *profilesPath
	}
	if *printMetrics {
		cfg.Metrics.Enabled = true
	}
	if *trace {
		cfg.Tracing.Enabled = true
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	opts := app.Options{
		BaseURL:      *baseURL,
		Headers:      headers,
		Loading:      *loading,
		Scripts:      scripts,
		FailOnStatus: *failOnStatus,
	}
	if *envelope != "" || *codePath != "" {
		opts.Envelope = &interceptors.EnvelopeOptions{DataPath: *envelope, CodePath: *codePath}
	}

	a, err := app.New(cfg, logger, opts)
	if err != nil {
		logger.Error("Failed to build client", zap.Error(err))
		return 1
	}
	defer a.Close()

	local := request.LocalConfig{
		DataType:     *dataType,
		ResponseType: *responseType,
		Timeout:      *timeout,
	}
	if *insecure {
		local.VerifyTLS = request.Bool(false)
	}
	if *loading {
		local.Extra = map[string]any{interceptors.LoadingKey: true}
	}
	callOpts := []request.CallOption{request.WithConfig(local)}
	if *index >= 0 {
		callOpts = append(callOpts, request.WithGlobalIndex(*index))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	var out any
	switch {
	case len(args) >= 2 && strings.EqualFold(args[0], "upload"):
		out, err = upload(ctx, a.Client, args[1], args[2:], *fieldName, *fileType, *formData, callOpts)
	case len(args) == 2 || len(args) == 3:
		out, err = call(ctx, a.Client, strings.ToUpper(args[0]), args[1], args[2:], callOpts)
	default:
		flag.Usage()
		return 2
	}

	if *printMetrics && a.Metrics != nil {
		if werr := writeMetrics(os.Stderr, a.Metrics.Snapshot()); werr != nil {
			logger.Error("Failed to encode metrics", zap.Error(werr))
		}
	}

	if err != nil {
		logger.Error("Call failed", zap.String("kind", request.KindOf(err)), zap.Error(err))
		return 1
	}

	if !*showHeaders {
		stripHeaders(out)
	}
	body, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Error("Failed to encode output", zap.Error(err))
		return 1
	}
	fmt.Println(string(body))
	return 0
}

// writeMetrics prints the call totals as indented JSON.
func writeMetrics(w io.Writer, snap monitoring.Snapshot) error {
	body, err := sonic.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	_, err = fmt.Fprintln(w, string(body))
	return err
}

func call(ctx context.Context, client *request.Client, method, uri string, rest []string, opts []request.CallOption) (any, error) {
	var data any
	if len(rest) == 1 {
		if err := sonic.UnmarshalString(rest[0], &data); err != nil {
			data = rest[0]
		}
	}

	resp, err := client.Do(ctx, method, uri, data, opts...)
	if err != nil {
		return nil, err
	}
	return toOutput(resp), nil
}

func upload(ctx context.Context, client *request.Client, uri string, patterns []string, field, fileType, form string, opts []request.CallOption) (any, error) {
	paths, err := expand(patterns)
	if err != nil {
		return nil, err
	}

	var formData map[string]any
	if form != "" {
		if err := sonic.UnmarshalString(form, &formData); err != nil {
			return nil, fmt.Errorf("parse -form: %w", err)
		}
	}

	resps, err := client.UploadFiles(ctx, uri, request.UploadOptions{
		FilePaths: paths,
		FormData:  formData,
		FileType:  fileType,
		FieldName: field,
	}, opts...)
	if err != nil {
		return nil, err
	}

	outs := make([]*output, len(resps))
	for i, resp := range resps {
		outs[i] = toOutput(resp)
	}
	return outs, nil
}

// expand resolves doublestar patterns to a de-duplicated file list, keeping
// the order of the patterns. Arguments without magic are taken literally.
func expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			if !seen[pattern] {
				seen[pattern] = true
				paths = append(paths, pattern)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no files matched")
	}
	return paths, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func toOutput(resp *request.Response) *output {
	return &output{Status: resp.StatusCode, Header: resp.Header, Data: resp.Data}
}

func stripHeaders(out any) {
	switch v := out.(type) {
	case *output:
		v.Header = nil
	case []*output:
		for _, o := range v {
			o.Header = nil
		}
	}
}
