// Package executor turns one action and a run's parameters into an HTTP
// request, sends it and classifies the outcome.
//
// # Request construction
//
//  1. The URL template is expanded with percent tokens.
//  2. Header and data values are expanded with percent and dollar tokens.
//  3. Any "cookie" header is removed, whatever its case.
//  4. GET: data is encoded as a query string and appended with '?' or '&'.
//     No body is sent.
//  5. POST and PUT: Content-Type is forced to application/json and data is
//     sent as a JSON object.
//
// # Classification
//
// A response with a 2xx status is a success. Any other status, a transport
// error or an unsupported method is a failure. Response bodies declared as
// application/json are decoded; decoding errors keep the raw text and never
// turn a success into a failure.
//
// # Usage
//
//	exec := executor.New(httpClient, executor.WithLogger(logger))
//	result := exec.Execute(ctx, 0, action, params, template.NewContext(msg, page))
package executor
