package interceptors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ScriptEntry is the function a script must define.
const ScriptEntry = "intercept"

// ScriptConfig configures Script.
type ScriptConfig struct {
	// Name labels the program in stack traces.
	Name    string
	Timeout time.Duration
	// Logger receives console output.
	Logger *zap.Logger
}

// DefaultScriptConfig returns the defaults used by Script.
func DefaultScriptConfig() ScriptConfig {
	return ScriptConfig{
		Name:    "interceptor.js",
		Timeout: 100 * time.Millisecond,
	}
}

// ErrNoEntry is returned when a script does not define ScriptEntry.
var ErrNoEntry = errors.New("script does not define function " + ScriptEntry)

// Script compiles src into an interceptor. The script defines
//
//	function intercept(config) { ... }
//
// and receives the merged config as an object with baseUrl, header, dataType,
// responseType, timeoutMs, verifyTls and extra. Changes to those fields carry
// over to the call. Returning false skips, throwing aborts the call.
func Script(src string, cfg ScriptConfig) (request.Interceptor, error) {
	defaults := DefaultScriptConfig()
	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	program, err := goja.Compile(cfg.Name, src, false)
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}

	return func(ctx context.Context, merged *request.MergedConfig, _ request.AddFinalizer) request.Outcome {
		skip, err := runScript(ctx, program, cfg, merged)
		if err != nil {
			return request.Abort(err)
		}
		if skip {
			return request.Skip()
		}
		return request.Continue()
	}, nil
}

// runScript runs program in a fresh VM; goja runtimes are not safe for
// concurrent use.
func runScript(ctx context.Context, program *goja.Program, cfg ScriptConfig, merged *request.MergedConfig) (bool, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)
	setupGlobals(vm, cfg.Logger)

	timer := time.NewTimer(cfg.Timeout)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	if _, err := vm.RunProgram(program); err != nil {
		return false, fmt.Errorf("run script: %w", err)
	}

	entry, ok := goja.AssertFunction(vm.Get(ScriptEntry))
	if !ok {
		return false, ErrNoEntry
	}

	obj := exportConfig(merged)
	ret, err := entry(goja.Undefined(), vm.ToValue(obj))
	if err != nil {
		return false, fmt.Errorf("script: %w", err)
	}

	importConfig(obj, merged)
	return ret.StrictEquals(vm.ToValue(false)), nil
}

func setupGlobals(vm *goja.Runtime, logger *zap.Logger) {
	for _, name := range []string{"require", "process", "module", "exports"} {
		_ = vm.Set(name, goja.Undefined())
	}

	console := vm.NewObject()
	for level, log := range map[string]func(string, ...zap.Field){
		"log":   logger.Info,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		_ = console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			log(strings.Join(parts, " "), zap.String("source", "script"))
			return goja.Undefined()
		})
	}
	_ = vm.Set("console", console)
}

// exportConfig builds the script's view of merged. Nested maps are live, so
// writes from the script land in them.
func exportConfig(merged *request.MergedConfig) map[string]any {
	header := make(map[string]any, len(merged.Header))
	for k, v := range merged.Header {
		header[k] = v
	}
	extra := merged.Extra
	if extra == nil {
		extra = map[string]any{}
	}

	obj := map[string]any{
		"baseUrl":      merged.BaseURL,
		"header":       header,
		"dataType":     merged.DataTypeOrDefault(),
		"responseType": merged.ResponseTypeOrDefault(),
		"timeoutMs":    merged.TimeoutOrDefault().Milliseconds(),
		"verifyTls":    merged.VerifyTLSOrDefault(),
		"extra":        extra,
	}
	return obj
}

func importConfig(obj map[string]any, merged *request.MergedConfig) {
	if s, ok := obj["baseUrl"].(string); ok {
		merged.BaseURL = s
	}
	if s, ok := obj["dataType"].(string); ok {
		merged.DataType = s
	}
	if s, ok := obj["responseType"].(string); ok {
		merged.ResponseType = s
	}
	switch ms := obj["timeoutMs"].(type) {
	case int64:
		merged.Timeout = time.Duration(ms) * time.Millisecond
	case float64:
		merged.Timeout = time.Duration(ms * float64(time.Millisecond))
	}
	if b, ok := obj["verifyTls"].(bool); ok {
		merged.VerifyTLS = request.Bool(b)
	}

	if header, ok := obj["header"].(map[string]any); ok {
		merged.Header = make(map[string]string, len(header))
		for k, v := range header {
			merged.Header[k] = fmt.Sprint(v)
		}
	}
	if extra, ok := obj["extra"].(map[string]any); ok {
		merged.Extra = extra
	}
}
