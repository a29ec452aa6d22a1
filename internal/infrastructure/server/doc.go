// Package server assembles the portfolio backend: configuration, logging,
// metrics, tracing, the dataset catalog, the session manager and the gin
// router serving the JSON API and the event stream.
package server
