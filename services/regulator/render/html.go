// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package render converts agent markdown output into the styled HTML the
// frontend expects.
//
// Content that already carries class-attributed HTML tags is passed through
// untouched: some agents emit pre-styled HTML and re-rendering it would
// double-wrap the markup. Everything else is rendered as GitHub-flavored
// markdown and the resulting tags are decorated with the frontend's utility
// classes.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var preStyledHTML = regexp.MustCompile(`(?i)<\s*(p|div|h[1-6]|ul|ol|li|table|strong|em|a|code|pre)\b[^>]*class=`)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// classDecorator rewrites the bare tags goldmark emits into the
// class-attributed tags the chat frontend styles.
var classDecorator = strings.NewReplacer(
	"<h1>", `<h1 class="text-2xl font-bold text-gray-900 mb-4 mt-6 border-b border-gray-200 pb-2">`,
	"<h2>", `<h2 class="text-xl font-semibold text-gray-900 mb-3 mt-5">`,
	"<h3>", `<h3 class="text-lg font-semibold text-gray-900 mb-3 mt-4 border-b border-gray-200 pb-1">`,
	"<h4>", `<h4 class="text-lg font-semibold text-gray-900 mb-2 mt-3">`,
	"<h5>", `<h5 class="text-lg font-semibold text-gray-900 mb-2 mt-3">`,
	"<h6>", `<h6 class="text-lg font-semibold text-gray-900 mb-2 mt-3">`,
	"<p>", `<p class="mb-4 leading-relaxed text-gray-800">`,
	"<ul>", `<ul class="mb-4 ml-4 list-disc space-y-1">`,
	"<ol>", `<ol class="mb-4 ml-4 list-decimal space-y-1">`,
	"<li>", `<li class="mb-2 ml-4">`,
	"<strong>", `<strong class="font-semibold text-gray-900">`,
	"<em>", `<em class="italic text-gray-800">`,
	"<pre>", `<pre class="bg-gray-100 p-4 rounded-lg overflow-x-auto text-sm mb-4 font-mono">`,
	"<code>", `<code class="bg-gray-100 text-gray-800 px-2 py-1 rounded text-sm font-mono">`,
	"<blockquote>", `<blockquote class="border-l-4 border-primary-300 pl-4 italic text-gray-700 mb-4 bg-gray-50 py-2 rounded-r">`,
	"<hr>", `<hr class="my-6 border-gray-300">`,
	"<table>", `<table class="w-full border-collapse border border-gray-300 rounded-lg overflow-hidden shadow-sm mb-6">`,
	"<th>", `<th class="px-4 py-3 bg-gray-50 font-semibold text-gray-900 text-left">`,
	"<td>", `<td class="px-4 py-2 border-b border-gray-200">`,
)

// Clean renders agent output as styled HTML. It is total: empty input yields
// an empty string, and content that cannot be rendered is returned as-is.
func Clean(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	if preStyledHTML.MatchString(content) {
		return content
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return classDecorator.Replace(buf.String())
}
