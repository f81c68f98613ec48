// Package extract converts source documents (PDF files, web pages) into
// plain text for chunking.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"golang.org/x/net/html"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

const userAgent = "ragassist/1.0"

// PDF extracts plain text from the PDF at path. Page texts are joined by
// blank lines. Returns the text and the number of pages.
func PDF(path string) (string, int, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: open pdf %q: %v", domain.ErrExtraction, path, err)
	}

	pages := r.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			// Best effort per page; a single broken page should not sink
			// the whole document.
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			parts = append(parts, content)
		}
	}

	text := strings.Join(parts, "\n\n")
	if text == "" {
		// Layout-aware extraction produced nothing; try the reader's
		// whole-document path.
		if rd, err := r.GetPlainText(); err == nil {
			if raw, err := io.ReadAll(rd); err == nil {
				text = strings.TrimSpace(string(raw))
			}
		}
	}
	if text == "" {
		return "", pages, fmt.Errorf("%w: pdf %q contains no extractable text", domain.ErrExtraction, path)
	}
	return text, pages, nil
}

// WebExtractor fetches web pages and reduces them to readable text.
type WebExtractor struct {
	client *http.Client
}

// NewWebExtractor creates an extractor with the given fetch timeout.
func NewWebExtractor(timeout time.Duration) *WebExtractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &WebExtractor{client: &http.Client{Timeout: timeout}}
}

// Extract fetches url and returns its textual content. The primary strategy
// parses the DOM and drops boilerplate elements; if that yields nothing a
// cruder tag-stripping pass runs over the raw body.
func (e *WebExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q: %v", domain.ErrExtraction, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %q: %v", domain.ErrExtraction, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: fetch %q: status %s", domain.ErrExtraction, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %v", domain.ErrExtraction, url, err)
	}

	text, err := domText(body)
	if err != nil || text == "" {
		text = stripTags(body)
	}
	if text == "" {
		return "", fmt.Errorf("%w: %q contains no extractable text", domain.ErrExtraction, url)
	}
	return text, nil
}

// skipElements are dropped wholesale when walking the DOM.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"noscript": true,
}

func domText(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(b.String()), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
)

// stripTags is the fallback extraction: remove script/style blocks, strip
// remaining tags, and collapse blank lines.
func stripTags(body []byte) string {
	text := scriptRe.ReplaceAllString(string(body), " ")
	text = tagRe.ReplaceAllString(text, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
