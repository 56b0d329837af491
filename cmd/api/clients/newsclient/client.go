// Package newsclient fetches recent headlines about a player from an RSS
// search endpoint (Google News by default).
package newsclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"roast-board/cmd/api/httpclient"
	"roast-board/config"
	"roast-board/models"
)

type Article struct {
	Title       string    `json:"title"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

type Client struct {
	base  *httpclient.BaseClient
	limit int
}

func New(cfg config.NewsConfig) *Client {
	return &Client{
		base:  httpclient.NewBaseClient(cfg.SearchURL, httpclient.Config{Timeout: cfg.Timeout}),
		limit: cfg.Limit,
	}
}

// Search returns up to the configured number of articles matching query, in
// feed order.
func (c *Client) Search(ctx context.Context, query string) ([]Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	req, err := c.base.NewRequest(ctx, http.MethodGet, "", q)
	if err != nil {
		return nil, err
	}
	resp, err := c.base.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: news feed: %v", models.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("news feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("news feed: status=%d body=%s", resp.StatusCode, string(b))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("news feed: %w", err)
	}

	articles := []Article{}
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		title, source := splitSource(item.Title)
		articles = append(articles, Article{
			Title:       title,
			Source:      source,
			Description: plainText(item.Description),
			Link:        item.Link,
			PublishedAt: published,
		})
	}

	if c.limit > 0 && len(articles) > c.limit {
		articles = articles[:c.limit]
	}
	return articles, nil
}

// Headlines returns only the titles of Search.
func (c *Client) Headlines(ctx context.Context, query string) ([]string, error) {
	articles, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out, nil
}

// splitSource splits "Headline - Publisher" titles.
func splitSource(title string) (string, string) {
	title = strings.TrimSpace(title)
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

// plainText strips markup from a feed description.
func plainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.TextToken:
			if text := strings.TrimSpace(string(z.Text())); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
