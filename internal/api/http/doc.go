// Package http exposes the portfolio sessions over a JSON API.
//
// Every session operation is addressed by session ID. Domain errors map to
// 400, 404 and 409; script failures never reach the caller as an error
// status and are streamed as diagnostic events instead.
package http
