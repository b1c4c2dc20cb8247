// Package fetch turns an event-driven xhr.XMLHttpRequest into a fetch-style
// API: configure a Request, call Fetch once, and receive a Promise of a
// Response.
//
// # Basic Usage
//
//	req := fetch.New("https://api.example.com/users/1", fetch.RequestInit{
//	    Headers: map[string]string{"Accept": "application/json"},
//	})
//	res, err := req.Fetch().Await(ctx)
//	if err != nil {
//	    return err // transport failure, exactly as reported by the transport
//	}
//	if !res.OK {
//	    return fmt.Errorf("unexpected status %d", res.Status)
//	}
//	user, err := fetch.DecodeJSON[User](res)
//
// # Chaining
//
//	text := fetch.Then(req.Fetch(), func(r *fetch.Response) (string, error) {
//	    return r.Text(), nil
//	})
//
// # Cancellation
//
// Cancellation goes through the transport handle: req.XHR().Abort(), or the
// equivalent req.Cancel(). After an abort the promise never settles; callers
// that need a bound must pass a context with a deadline to Await.
//
// # Responses
//
// HTTP error statuses are not errors: a 404 fulfills the promise with OK set
// to false. Body accessors (Text, JSON, Blob) are non-consuming and may be
// called repeatedly, and Clone returns a new view over the same call.
package fetch
