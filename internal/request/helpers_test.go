package request

import (
	"context"
	"sync"
	"time"
)

// fakeTransport records requests and settles tasks from the configured funcs
// on their own goroutines.
type fakeTransport struct {
	mu      sync.Mutex
	sends   []*SendRequest
	uploads []*UploadRequest

	sendFn   func(ctx context.Context, req *SendRequest) (*Response, error)
	uploadFn func(ctx context.Context, req *UploadRequest) (*Response, error)
}

func (f *fakeTransport) Send(ctx context.Context, req *SendRequest) Task {
	f.mu.Lock()
	f.sends = append(f.sends, req)
	fn := f.sendFn
	f.mu.Unlock()

	if fn == nil {
		fn = func(context.Context, *SendRequest) (*Response, error) {
			return &Response{StatusCode: 200, Data: "ok"}, nil
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	task := NewAsyncTask(cancel)
	go func() {
		defer cancel()
		task.Complete(fn(ctx, req))
	}()
	return task
}

func (f *fakeTransport) Upload(ctx context.Context, req *UploadRequest) Task {
	f.mu.Lock()
	f.uploads = append(f.uploads, req)
	fn := f.uploadFn
	f.mu.Unlock()

	if fn == nil {
		fn = func(_ context.Context, req *UploadRequest) (*Response, error) {
			return &Response{StatusCode: 200, Data: req.FilePath}, nil
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	task := NewAsyncTask(cancel)
	go func() {
		defer cancel()
		task.Complete(fn(ctx, req))
	}()
	return task
}

func (f *fakeTransport) sent() []*SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*SendRequest(nil), f.sends...)
}

func (f *fakeTransport) uploaded() []*UploadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*UploadRequest(nil), f.uploads...)
}

type recordedCall struct {
	method  string
	outcome string
}

type fakeRecorder struct {
	mu         sync.Mutex
	calls      []recordedCall
	uploads    []string
	finalizers int
	tasks      int
}

func (r *fakeRecorder) ObserveCall(method, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{method, outcome})
}

func (r *fakeRecorder) ObserveUpload(outcome string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, outcome)
}

func (r *fakeRecorder) ObserveFinalizers(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizers += count
}

func (r *fakeRecorder) ObserveTaskRegistered(tasks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks += tasks
}

// trace is a concurrency-safe event log.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (t *trace) add(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *trace) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

func newTestClient(globals ...GlobalConfig) (*Client, *fakeTransport) {
	tr := &fakeTransport{}
	c := New(tr)
	if len(globals) > 0 {
		if err := c.SetGlobalConfig(globals); err != nil {
			panic(err)
		}
	}
	return c, tr
}
