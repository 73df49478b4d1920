// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package present

import (
	"bytes"
	"html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/multiagent-studio/studio/pkg/core"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
)

// HTML renders an outcome for the output pane. Success text is treated as
// markdown and sanitized; failure text is shown verbatim in a code block.
func HTML(o core.Outcome) template.HTML {
	if o.IsZero() {
		return ""
	}
	if !o.OK() {
		return failureHTML(o.Text)
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(o.Text), &buf); err != nil {
		return template.HTML("<pre>" + html.EscapeString(o.Text) + "</pre>")
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

func failureHTML(text string) template.HTML {
	return template.HTML(`<pre class="error"><code>` + html.EscapeString(text) + "</code></pre>")
}
