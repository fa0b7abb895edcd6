package request

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/reqflow/internal/shared/id"
	"go.uber.org/zap"
)

// DefaultFieldName is the multipart field used when UploadOptions.FieldName is empty.
const DefaultFieldName = "file"

// UploadOptions describes an upload call.
type UploadOptions struct {
	FilePaths []string
	FormData  map[string]any
	FileType  string
	FieldName string
}

type uploadResult struct {
	index int
	resp  *Response
	err   error
}

// UploadFiles uploads every file in opts.FilePaths with its own transport
// operation. The config is resolved and the request phase runs once for the
// whole batch; every file then runs the response phase and the finalizers on
// its own. Responses are returned in FilePaths order once all files succeed.
// The first failure is returned as soon as it is seen; uploads still in flight
// keep running.
func (c *Client) UploadFiles(ctx context.Context, uri string, opts UploadOptions, callOpts ...CallOption) ([]*Response, error) {
	start := time.Now()
	uploadID := id.NewUploadID()
	logger := c.logger.With(zap.String("upload_id", uploadID.String()), zap.String("uri", uri), zap.Int("files", len(opts.FilePaths)))

	responses, err := c.upload(ctx, logger, uri, opts, callOpts)

	c.recorder.ObserveUpload(KindOf(err), len(opts.FilePaths), time.Since(start))
	if err != nil {
		logger.Warn("Upload failed", zap.String("outcome", KindOf(err)), zap.Error(err))
		return nil, err
	}
	logger.Debug("Upload completed", zap.Duration("duration", time.Since(start)))
	return responses, nil
}

func (c *Client) upload(ctx context.Context, logger *zap.Logger, uri string, opts UploadOptions, callOpts []CallOption) ([]*Response, error) {
	if len(opts.FilePaths) == 0 {
		return nil, &ValidationError{Field: "FilePaths", Message: "must be a non-empty list"}
	}

	settings, merged, global, err := c.resolve(callOpts)
	if err != nil {
		return nil, err
	}

	chain, err := c.pipeline.RunRequestPhase(ctx, merged)
	if err != nil {
		return nil, err
	}

	var formData map[string]any
	var formSource any
	if opts.FormData != nil {
		formSource = opts.FormData
	}
	data := EffectiveData(global.Data, formSource)
	if m, ok := asMap(data); ok {
		formData = m
	} else if present(data) {
		logger.Debug("Dropping non-record form data", zap.Any("data", data))
	}

	fieldName := opts.FieldName
	if fieldName == "" {
		fieldName = DefaultFieldName
	}
	url := merged.BaseURL + uri

	tasks := make(TaskSet, len(opts.FilePaths))
	for i, path := range opts.FilePaths {
		tasks[i] = c.transport.Upload(ctx, &UploadRequest{
			URL:       url,
			FilePath:  path,
			FieldName: fieldName,
			FileType:  opts.FileType,
			Header:    cloneHeader(merged.Header),
			FormData:  cloneMap(formData),
		})
	}
	c.register(settings.name, tasks, len(tasks))

	results := make(chan uploadResult, len(tasks))
	for i, task := range tasks {
		go func(i int, task Task) {
			raw, err := task.Wait(ctx)
			if err != nil {
				if errors.Is(err, ctx.Err()) {
					task.Abort()
				}
				c.finalize()
				results <- uploadResult{index: i, err: &TransportError{Method: "UPLOAD", URL: url, Err: err}}
				return
			}
			resp, err := c.pipeline.RunResponsePhase(ctx, chain, raw)
			if err != nil {
				results <- uploadResult{index: i, err: err}
				return
			}
			c.finalize()
			results <- uploadResult{index: i, resp: resp}
		}(i, task)
	}

	responses := make([]*Response, len(tasks))
	for range tasks {
		r := <-results
		if r.err != nil {
			logger.Debug("File upload failed", zap.String("file", opts.FilePaths[r.index]), zap.Error(r.err))
			return nil, r.err
		}
		responses[r.index] = r.resp
	}
	return responses, nil
}
