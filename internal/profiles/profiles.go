// Package profiles loads the global config collection from a file.
//
// The file holds a single "profiles" list; the position of each entry is the
// index calls select it by:
//
//	profiles:
//	  - baseUrl: https://api.example.com
//	    header:
//	      Accept: application/json
//	    timeoutMs: 5000
//	    extra:
//	      isLoading: true
//
// YAML, TOML and JSON are supported and chosen by file extension.
package profiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is a profile file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for unsupported file extensions.
var ErrUnknownFormat = errors.New("unknown profile format")

// Profile is one serialized global config.
type Profile struct {
	BaseURL      string            `json:"baseUrl" yaml:"baseUrl" toml:"baseUrl"`
	Header       map[string]string `json:"header" yaml:"header" toml:"header"`
	DataType     string            `json:"dataType" yaml:"dataType" toml:"dataType"`
	ResponseType string            `json:"responseType" yaml:"responseType" toml:"responseType"`
	TimeoutMs    int64             `json:"timeoutMs" yaml:"timeoutMs" toml:"timeoutMs"`
	VerifyTLS    *bool             `json:"verifyTls" yaml:"verifyTls" toml:"verifyTls"`
	Data         any               `json:"data" yaml:"data" toml:"data"`
	Extra        map[string]any    `json:"extra" yaml:"extra" toml:"extra"`
}

type file struct {
	Profiles []Profile `json:"profiles" yaml:"profiles" toml:"profiles"`
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads and parses the profile file at path.
func Load(path string) ([]request.GlobalConfig, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	configs, err := Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return configs, nil
}

// Parse decodes data in the given format.
func Parse(format Format, data []byte) ([]request.GlobalConfig, error) {
	var f file
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatJSON:
		err = sonic.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s profiles: %w", format, err)
	}

	configs := make([]request.GlobalConfig, 0, len(f.Profiles))
	for i, p := range f.Profiles {
		cfg, err := p.toConfig()
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (p Profile) toConfig() (request.GlobalConfig, error) {
	if p.TimeoutMs < 0 {
		return request.GlobalConfig{}, &request.ValidationError{Field: "timeoutMs", Message: "must not be negative"}
	}
	return request.GlobalConfig{
		BaseURL:      p.BaseURL,
		Header:       p.Header,
		DataType:     p.DataType,
		ResponseType: p.ResponseType,
		Timeout:      time.Duration(p.TimeoutMs) * time.Millisecond,
		VerifyTLS:    p.VerifyTLS,
		Data:         p.Data,
		Extra:        p.Extra,
	}, nil
}
