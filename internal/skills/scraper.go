package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

type ScraperSkill struct {
	UserAgent string
}

func NewScraperSkill() *ScraperSkill {
	return &ScraperSkill{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

func (s *ScraperSkill) Name() string {
	return "scraper"
}

func (s *ScraperSkill) Description() string {
	return "Fetch a webpage URL and extract the main content as clean, sanitized text."
}

func (s *ScraperSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The full URL of the webpage to scrape (e.g., https://example.com/article)",
			},
		},
		"required": []string{"url"},
	}
}

func (s *ScraperSkill) Invoke(ctx context.Context, input string) (string, error) {
	target := strings.TrimSpace(input)
	if strings.HasPrefix(target, "{") {
		var args struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			return "", fmt.Errorf("invalid input: %v", err)
		}
		target = args.URL
	}
	if target == "" {
		return "", fmt.Errorf("no URL given")
	}

	// Fetch the URL
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %v", err)
	}

	// Use readability to extract content
	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %v", err)
	}

	// Sanitize output (remove any remaining HTML tags or scripts)
	p := bluemonday.StrictPolicy()
	sanitized := p.Sanitize(article.TextContent)

	output := fmt.Sprintf("TITLE: %s\n", article.Title)
	if article.Excerpt != "" {
		output += fmt.Sprintf("EXCERPT: %s\n", article.Excerpt)
	}
	output += "\n-- CONTENT --\n"

	// Limit content length to keep step outputs bounded
	content := sanitized
	if len(content) > 50000 {
		content = content[:50000] + "\n... (content truncated) ..."
	}
	output += content

	return output, nil
}
