package transport

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// encodeBody attaches data to r. Map data on GET and HEAD becomes the query
// string; form content types send map data url-encoded; strings and bytes go
// out raw; anything else is JSON.
func encodeBody(r *resty.Request, method, dataType string, data any) error {
	if data == nil {
		return nil
	}

	if method == http.MethodGet || method == http.MethodHead {
		if fields, ok := record(data); ok {
			r.SetQueryParams(fields)
			return nil
		}
		if v, ok := data.(string); ok {
			if v != "" {
				r.SetQueryString(v)
			}
			return nil
		}
	}

	if fields, ok := record(data); ok && strings.Contains(r.Header.Get("Content-Type"), contentTypeForm) {
		r.SetFormData(fields)
		return nil
	}

	switch v := data.(type) {
	case string:
		r.SetBody(v)
		return nil
	case []byte:
		r.SetBody(v)
		return nil
	}

	body, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", dataType, err)
	}
	if r.Header.Get("Content-Type") == "" {
		r.SetHeader("Content-Type", contentTypeJSON)
	}
	r.SetBody(body)
	return nil
}

// record flattens record-shaped data into string fields.
func record(data any) (map[string]string, bool) {
	switch v := data.(type) {
	case map[string]any:
		return stringify(v), true
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// stringify flattens map values for query strings and form fields.
func stringify(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch s := v.(type) {
		case string:
			out[k] = s
		case nil:
			out[k] = ""
		case map[string]any, []any:
			b, err := sonic.Marshal(s)
			if err != nil {
				out[k] = fmt.Sprint(s)
				continue
			}
			out[k] = string(b)
		default:
			out[k] = fmt.Sprint(s)
		}
	}
	return out
}
