// Package jobfetch downloads a job posting and reduces it to a title and a
// plain-text description for job targeting.
package jobfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxBodyBytes = 2 << 20

var ErrEmptyPosting = errors.New("job posting has no text")

// Posting is a fetched job posting.
type Posting struct {
	Title       string
	Description string
}

// Fetcher downloads postings over HTTP.
type Fetcher struct {
	Client *http.Client
}

// Fetch downloads url with a default client.
func Fetch(ctx context.Context, url string) (Posting, error) {
	return (&Fetcher{}).Fetch(ctx, url)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (Posting, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Posting{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "resumectl/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return Posting{}, fmt.Errorf("fetch job posting: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Posting{}, fmt.Errorf("fetch job posting: status %d", resp.StatusCode)
	}
	return Parse(io.LimitReader(resp.Body, maxBodyBytes))
}

// Parse reduces an HTML document to a Posting.
func Parse(r io.Reader) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Posting{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find("script, style, noscript, nav, footer, header, title").Remove()
	desc := cleanText(doc.Find("body").Text())
	if desc == "" {
		desc = cleanText(doc.Text())
	}
	if desc == "" {
		return Posting{}, ErrEmptyPosting
	}
	return Posting{Title: collapse(title), Description: desc}, nil
}

func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = collapse(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
