package transport

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/reqflow/internal/request"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

func (t *Transport) upload(ctx context.Context, req *request.UploadRequest) (*request.Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	contentType, err := fileContentType(req.FilePath, req.FileType)
	if err != nil {
		return nil, err
	}

	fieldName := req.FieldName
	if fieldName == "" {
		fieldName = request.DefaultFieldName
	}

	ctx, span := t.startSpan(ctx, http.MethodPost, req.URL, req.Header)
	if span != nil {
		span.SetTag("upload.file", filepath.Base(req.FilePath))
	}
	r := t.verify.R().
		SetContext(ctx).
		SetHeaders(traceHeaders(ctx, req.Header)).
		SetMultipartField(fieldName, filepath.Base(req.FilePath), contentType, file)
	if len(req.FormData) > 0 {
		r.SetFormData(stringify(req.FormData))
	}

	start := time.Now()
	resp, err := t.execute(req.URL, func() (*resty.Response, error) {
		return r.Execute(http.MethodPost, req.URL)
	})
	t.endSpan(span, resp, err)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("transport upload",
		zap.String("url", req.URL),
		zap.String("file", req.FilePath),
		zap.String("content_type", contentType),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
		tracing.Field(ctx))

	return decode(resp, dataTypeJSON, "text")
}

// fileContentType uses fileType when it is a full MIME type and sniffs the
// file otherwise.
func fileContentType(path, fileType string) (string, error) {
	if strings.Contains(fileType, "/") {
		return fileType, nil
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	return mtype.String(), nil
}
