// Package interceptors provides ready-made request.Interceptor values.
//
//   - Loading shows an indicator for calls whose config sets extra "isLoading"
//   - Headers fills in default headers
//   - BearerToken fetches a token before the call goes out
//   - Envelope unwraps {code, message, data} style JSON replies
//   - StatusCheck rejects error statuses
//   - Script runs a JavaScript hook against the outgoing config
//   - Logger logs each call and its status
//
// Interceptors that contribute response handlers only do so on the call that
// seals the client's handler chain; register them before the first call.
package interceptors
