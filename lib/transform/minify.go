// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"context"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// minifier is the shared tdewolff registry. minify.M is safe for
// concurrent use once configured.
var minifier = minify.New()

func init() {
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/javascript", js.Minify)
}

// CSSMinify minifies stylesheets. Malformed CSS fails the asset for
// this run; it is never passed through silently, since a broken
// stylesheet published under a fresh hash would poison caches until
// the next content change.
type CSSMinify struct{}

// Name implements Stage.
func (CSSMinify) Name() string { return "css-minify" }

// Apply implements Stage.
func (CSSMinify) Apply(_ context.Context, in Input) ([]Output, error) {
	minified, err := minifier.Bytes("text/css", in.Data)
	if err != nil {
		return nil, &Error{Stage: "css-minify", LogicalPath: in.LogicalPath, Err: err}
	}
	return []Output{{Data: minified, ContentType: "text/css"}}, nil
}

// JSMinify minifies scripts. Same failure policy as CSSMinify.
type JSMinify struct{}

// Name implements Stage.
func (JSMinify) Name() string { return "js-minify" }

// Apply implements Stage.
func (JSMinify) Apply(_ context.Context, in Input) ([]Output, error) {
	minified, err := minifier.Bytes("text/javascript", in.Data)
	if err != nil {
		return nil, &Error{Stage: "js-minify", LogicalPath: in.LogicalPath, Err: err}
	}
	return []Output{{Data: minified, ContentType: "text/javascript"}}, nil
}
