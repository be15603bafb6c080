// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
)

// MarkdownRender converts Markdown sources to HTML artifacts. The
// output takes the .html extension, so "docs/guide.md" publishes as
// "guide.<hash>.html".
type MarkdownRender struct{}

// Name implements Stage.
func (MarkdownRender) Name() string { return "markdown-render" }

// Apply implements Stage.
func (MarkdownRender) Apply(_ context.Context, in Input) ([]Output, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(in.Data, &buf); err != nil {
		return nil, &Error{Stage: "markdown-render", LogicalPath: in.LogicalPath, Err: err}
	}
	return []Output{{
		Data:        buf.Bytes(),
		Ext:         "html",
		ContentType: "text/html",
	}}, nil
}
