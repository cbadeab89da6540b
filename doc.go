// Package tinkoffpay provides a Go client for the Tinkoff Merchant API v2,
// covering the payment session lifecycle and recurrent payment management
// behind a single typed interface.
//
// # Overview
//
// The gateway speaks JSON over HTTPS and authenticates every request with a
// SHA-256 signature computed over the request fields and the terminal's
// secret key. This module handles the signing, the field-level validation
// the gateway enforces, and the gateway's uneven response shapes (numeric
// identifiers arriving as strings, card lists arriving as bare arrays) so
// calling code only ever sees typed responses or typed errors.
//
// # Layout
//
// The importable client lives in the tinkoff package:
//
//	import "github.com/mstgnz/tinkoffpay/tinkoff"
//
//	client := tinkoff.NewClient(tinkoff.NewCredential("TerminalKey", "SecretKey"))
//	resp, err := client.Init(ctx, 10000, "order-1", nil)
//
// Everything under infra/, handler/ and cmd/ belongs to the bundled demo
// server, which fronts the client with a small HTTP API and records every
// gateway round-trip to SQLite and optionally OpenSearch.
//
// # Error handling
//
// Operations return one of three error types: *tinkoff.ValidationError when
// a field fails the gateway's documented bounds before any network traffic,
// *tinkoff.GatewayError when the gateway itself declines the call, and
// *tinkoff.InternalError when the gateway's response cannot be decoded.
// All three are matched with errors.As.
package tinkoffpay
