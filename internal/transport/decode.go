package transport

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
)

const (
	dataTypeJSON          = "json"
	responseTypeArrayBuf  = "arraybuffer"
	contentEncodingZstd   = "zstd"
	headerContentEncoding = "Content-Encoding"
)

// decode turns a resty response into a request.Response.
func decode(resp *resty.Response, dataType, responseType string) (*request.Response, error) {
	raw := resp.Body()
	if strings.EqualFold(resp.Header().Get(headerContentEncoding), contentEncodingZstd) {
		plain, err := decompressZstd(raw)
		if err != nil {
			return nil, err
		}
		raw = plain
	}

	out := &request.Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header().Clone(),
		Raw:        raw,
	}

	if responseType == responseTypeArrayBuf {
		out.Data = raw
		return out, nil
	}

	text := toUTF8(raw, resp.Header().Get("Content-Type"))
	out.Data = text
	if dataType == dataTypeJSON && text != "" {
		var v any
		if err := sonic.UnmarshalString(text, &v); err == nil {
			out.Data = v
		}
	}
	return out, nil
}

func decompressZstd(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	plain, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decode zstd body: %w", err)
	}
	return plain, nil
}

// toUTF8 converts body to UTF-8 using the declared or sniffed charset.
func toUTF8(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(out)
}
