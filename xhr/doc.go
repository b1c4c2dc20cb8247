// Package xhr provides an event-driven HTTP transport primitive shaped like
// the browser XMLHttpRequest: a call is configured with Open and
// SetRequestHeader, started with Send, and reports back only through a
// one-shot load or error callback.
//
// Two backends are available:
//
//   - New: net/http, with redirects, cookie jar support and context-based Abort
//   - NewFast: valyala/fasthttp, same contract, Abort suppresses callbacks only
//
// Every call gets a uuid call id, a debug log line on send and on finish,
// an OpenTelemetry client span and request count/duration metrics.
//
// # Usage
//
//	x := xhr.New()
//	x.Open("GET", "https://example.com/", true)
//	x.SetOnLoad(func() { fmt.Println(x.Status(), x.ResponseText()) })
//	x.SetOnError(func(err error) { fmt.Println(err) })
//	x.Send(nil)
//
// Other transports embed State, which implements everything but Send, and
// drive each call through Begin, Loading and Complete or Fail. Package
// xhrmock is one such transport, for tests.
package xhr
