package request

import (
	"fmt"
	"time"
)

// Defaults applied when neither the global nor the local config sets a value.
const (
	DefaultDataType     = "json"
	DefaultResponseType = "text"
	DefaultTimeout      = 3000 * time.Millisecond
)

// GlobalConfig is an application-wide default configuration selected by index.
type GlobalConfig struct {
	BaseURL      string
	Header       map[string]string
	DataType     string
	ResponseType string
	Timeout      time.Duration
	VerifyTLS    *bool
	// Data is merged into the body (or form data) of every call using this config.
	Data any
	// Extra carries interceptor-specific settings such as "isLoading".
	Extra map[string]any
}

// LocalConfig overrides a GlobalConfig for a single call. Zero values leave the
// global value in place. Data must stay nil: call data is passed to the verb.
type LocalConfig struct {
	BaseURL      string
	Header       map[string]string
	DataType     string
	ResponseType string
	Timeout      time.Duration
	VerifyTLS    *bool
	Data         any
	Extra        map[string]any
}

// MergedConfig is the per-call configuration handed to interceptors. It is a
// private copy: interceptors may mutate it freely.
type MergedConfig struct {
	BaseURL      string
	Header       map[string]string
	DataType     string
	ResponseType string
	Timeout      time.Duration
	VerifyTLS    *bool
	Data         any
	Extra        map[string]any
}

// Bool returns a pointer to b, for VerifyTLS literals.
func Bool(b bool) *bool { return &b }

// Clone returns a deep copy of the config.
func (g GlobalConfig) Clone() GlobalConfig {
	return GlobalConfig{
		BaseURL:      g.BaseURL,
		Header:       cloneHeader(g.Header),
		DataType:     g.DataType,
		ResponseType: g.ResponseType,
		Timeout:      g.Timeout,
		VerifyTLS:    cloneBool(g.VerifyTLS),
		Data:         cloneValue(g.Data),
		Extra:        cloneMap(g.Extra),
	}
}

// DataTypeOrDefault returns the configured data type or DefaultDataType.
func (m *MergedConfig) DataTypeOrDefault() string {
	if m.DataType == "" {
		return DefaultDataType
	}
	return m.DataType
}

// ResponseTypeOrDefault returns the configured response type or DefaultResponseType.
func (m *MergedConfig) ResponseTypeOrDefault() string {
	if m.ResponseType == "" {
		return DefaultResponseType
	}
	return m.ResponseType
}

// TimeoutOrDefault returns the configured timeout or DefaultTimeout.
func (m *MergedConfig) TimeoutOrDefault() time.Duration {
	if m.Timeout <= 0 {
		return DefaultTimeout
	}
	return m.Timeout
}

// VerifyTLSOrDefault reports whether TLS certificates are verified. Only an
// explicit false disables verification.
func (m *MergedConfig) VerifyTLSOrDefault() bool {
	if m.VerifyTLS == nil {
		return true
	}
	return *m.VerifyTLS
}

// Resolver merges a selected global config with a local override.
type Resolver struct {
	globals []GlobalConfig
}

// NewResolver creates a resolver over globals. The slice is read, never written.
func NewResolver(globals []GlobalConfig) *Resolver {
	return &Resolver{globals: globals}
}

// Resolve validates the call and returns the merged config together with the
// cloned, unmerged global entry.
func (r *Resolver) Resolve(local LocalConfig, index int) (*MergedConfig, GlobalConfig, error) {
	if len(r.globals) == 0 {
		return nil, GlobalConfig{}, ErrNoGlobalConfig
	}
	if index < 0 || index > len(r.globals)-1 {
		return nil, GlobalConfig{}, fmt.Errorf("%w: index %d with %d configs", ErrIndexOutOfRange, index, len(r.globals))
	}
	if local.Data != nil {
		return nil, GlobalConfig{}, ErrDataInLocalConfig
	}

	global := r.globals[index].Clone()
	merged := &MergedConfig{
		BaseURL:      global.BaseURL,
		Header:       cloneHeader(global.Header),
		DataType:     global.DataType,
		ResponseType: global.ResponseType,
		Timeout:      global.Timeout,
		VerifyTLS:    cloneBool(global.VerifyTLS),
		Data:         cloneValue(global.Data),
		Extra:        cloneMap(global.Extra),
	}

	if local.BaseURL != "" {
		merged.BaseURL = local.BaseURL
	}
	for k, v := range local.Header {
		merged.Header[k] = v
	}
	if local.DataType != "" {
		merged.DataType = local.DataType
	}
	if local.ResponseType != "" {
		merged.ResponseType = local.ResponseType
	}
	if local.Timeout > 0 {
		merged.Timeout = local.Timeout
	}
	if local.VerifyTLS != nil {
		merged.VerifyTLS = cloneBool(local.VerifyTLS)
	}
	merged.Extra = mergeMaps(merged.Extra, local.Extra)

	return merged, global, nil
}
