package blog

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Both are safe for concurrent use after construction.
var (
	markdown  = goldmark.New()
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts markdown source to HTML and strips anything the
// user-generated-content policy disallows (scripts, event handlers, raw
// iframes). Called at write time; the result is stored with the record so
// reads never re-render.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return sanitizer.Sanitize(buf.String()), nil
}
