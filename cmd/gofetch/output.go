package main

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/kbukum/gofetch/errors"
	"github.com/kbukum/gofetch/fetch"
)

// envelope is the structured view printed by the json and yaml formats.
type envelope struct {
	URL        string            `json:"url" yaml:"url"`
	Status     int               `json:"status" yaml:"status"`
	StatusText string            `json:"status_text" yaml:"status_text"`
	OK         bool              `json:"ok" yaml:"ok"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
	Type       string            `json:"type" yaml:"type"`
	Size       int               `json:"size" yaml:"size"`
	// Body is the decoded document for JSON responses, the text otherwise.
	Body any `json:"body" yaml:"body"`
}

func newEnvelope(res *fetch.Response) (*envelope, error) {
	blob := res.Blob()
	env := &envelope{
		URL:        res.URL,
		Status:     res.Status,
		StatusText: res.StatusText,
		OK:         res.OK,
		Headers:    make(map[string]string),
		Type:       blob.Type(),
		Size:       blob.Size(),
		Body:       res.Text(),
	}
	for _, e := range res.Headers.Entries() {
		env.Headers[e.Name] = e.Value
	}

	if isJSON(res.Headers.Get("content-type")) && blob.Size() > 0 {
		var doc any
		if err := res.JSON(&doc); err != nil {
			return nil, errors.DecodeFailed("JSON", err)
		}
		env.Body = doc
	}
	return env, nil
}

func isJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func writeResponse(w io.Writer, format string, res *fetch.Response) error {
	var err error
	switch format {
	case "json":
		err = writeJSON(w, res)
	case "yaml":
		err = writeYAML(w, res)
	case "headers":
		err = writeHeaders(w, res)
	default:
		_, err = io.Copy(w, res.Blob().Reader())
	}
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.Internal(err)
	}
	return nil
}

func writeJSON(w io.Writer, res *fetch.Response) error {
	env, err := newEnvelope(res)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

func writeYAML(w io.Writer, res *fetch.Response) error {
	env, err := newEnvelope(res)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(env)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// writeHeaders prints the status line and the parsed header table.
func writeHeaders(w io.Writer, res *fetch.Response) error {
	if _, err := fmt.Fprintf(w, "%d %s\n", res.Status, res.StatusText); err != nil {
		return err
	}
	for _, e := range res.Headers.Entries() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", e.Name, e.Value); err != nil {
			return err
		}
	}
	return nil
}
