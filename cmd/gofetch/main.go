// Command gofetch issues one HTTP request through the fetch adapter and
// prints the response.
//
//	gofetch https://example.com/api -H 'Accept: application/json' -o json
//	gofetch -X POST -d '{"a":1}' --backend fast --fail https://example.com/items
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
