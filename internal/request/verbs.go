package request

import (
	"context"
	"net/http"
)

// Get sends a GET call. data becomes the query string for map-shaped values.
func (c *Client) Get(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodGet, uri, data, opts)
}

// Post sends a POST call.
func (c *Client) Post(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodPost, uri, data, opts)
}

// Put sends a PUT call.
func (c *Client) Put(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodPut, uri, data, opts)
}

// Delete sends a DELETE call.
func (c *Client) Delete(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodDelete, uri, data, opts)
}

// Trace sends a TRACE call.
func (c *Client) Trace(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodTrace, uri, data, opts)
}

// Connect sends a CONNECT call.
func (c *Client) Connect(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodConnect, uri, data, opts)
}

// Options sends an OPTIONS call.
func (c *Client) Options(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodOptions, uri, data, opts)
}

// Head sends a HEAD call.
func (c *Client) Head(ctx context.Context, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, http.MethodHead, uri, data, opts)
}

// Do sends a call with an arbitrary method.
func (c *Client) Do(ctx context.Context, method, uri string, data any, opts ...CallOption) (*Response, error) {
	return c.dispatch(ctx, method, uri, data, opts)
}
