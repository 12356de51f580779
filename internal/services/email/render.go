// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"codeberg.org/oliverandrich/nutrilab/internal/i18n"
)

// ActivationData fills the activation email.
type ActivationData struct {
	Username string
	Link     string
}

// RenderActivation renders the activation email as HTML and as plain text.
func RenderActivation(ctx context.Context, data ActivationData) (string, string, error) {
	var buf bytes.Buffer
	if err := activationEmail(data).Render(ctx, &buf); err != nil {
		return "", "", fmt.Errorf("rendering activation email: %w", err)
	}

	htmlBody := buf.String()
	text, err := HTMLToText(htmlBody)
	if err != nil {
		return "", "", err
	}
	return htmlBody, text, nil
}

func translate(ctx context.Context, messageID string, data ActivationData) string {
	return i18n.TData(ctx, messageID, map[string]any{"Username": data.Username})
}

// blockElements start a new line in the text rendering.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "h1": true, "h2": true, "h3": true,
	"li": true, "tr": true, "table": true, "ul": true, "ol": true,
}

// HTMLToText strips markup from an HTML document. Links keep their target
// in parentheses after the link text; script, style and head are dropped.
func HTMLToText(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			words := strings.Fields(n.Data)
			if len(words) == 0 {
				return
			}
			if n.Data[0] == ' ' || n.Data[0] == '\n' {
				b.WriteString(" ")
			}
			b.WriteString(strings.Join(words, " "))
			if strings.HasSuffix(n.Data, " ") || strings.HasSuffix(n.Data, "\n") {
				b.WriteString(" ")
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			}
			if blockElements[n.Data] {
				b.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					b.WriteString(" (" + attr.Val + ")")
				}
			}
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n")
		}
	}
	walk(doc)

	return tidyLines(b.String()), nil
}

// tidyLines trims every line and collapses runs of blank lines.
func tidyLines(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
