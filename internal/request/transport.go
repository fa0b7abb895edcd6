package request

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// SendRequest is the fully resolved single-shot call handed to the transport.
type SendRequest struct {
	URL          string
	Method       string
	Data         any
	Header       map[string]string
	DataType     string
	ResponseType string
	Timeout      time.Duration
	VerifyTLS    bool
}

// UploadRequest is one file of an upload call.
type UploadRequest struct {
	URL       string
	FilePath  string
	FieldName string
	FileType  string
	Header    map[string]string
	FormData  map[string]any
}

// Response is what the transport produced. Handlers may replace it.
type Response struct {
	StatusCode int
	Header     http.Header
	// Data is the decoded body: a JSON value, a string or a []byte depending
	// on the data and response types of the call.
	Data any
	// Raw is the undecoded body.
	Raw []byte
}

// Task is a handle on one in-flight transport operation.
type Task interface {
	Abort()
	Done() <-chan struct{}
	Wait(ctx context.Context) (*Response, error)
}

// Transport is the host-provided network primitive.
type Transport interface {
	Send(ctx context.Context, req *SendRequest) Task
	Upload(ctx context.Context, req *UploadRequest) Task
}

// AsyncTask is a Task settled exactly once by its producer through Complete.
type AsyncTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	resp   *Response
	err    error
}

// NewAsyncTask creates a pending task. cancel, if set, is called on Abort.
func NewAsyncTask(cancel context.CancelFunc) *AsyncTask {
	return &AsyncTask{cancel: cancel, done: make(chan struct{})}
}

// Complete settles the task. Later calls are ignored.
func (t *AsyncTask) Complete(resp *Response, err error) {
	t.once.Do(func() {
		t.resp, t.err = resp, err
		close(t.done)
	})
}

// Abort cancels the operation and settles the task with ErrAborted unless it
// already completed.
func (t *AsyncTask) Abort() {
	if t.cancel != nil {
		t.cancel()
	}
	t.Complete(nil, ErrAborted)
}

// Done is closed once the task settles.
func (t *AsyncTask) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles or ctx is done.
func (t *AsyncTask) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-t.done:
		return t.resp, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
