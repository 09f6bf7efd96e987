package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// BrowserSkill drives a headless browser session that survives across
// plan steps, so one step can navigate and a later one read or click.
// Screenshots land under the workspace like every other file artifact.
type BrowserSkill struct {
	workdir string

	mu            sync.Mutex
	allocCtx      context.Context
	sessionCtx    context.Context
	allocCancel   context.CancelFunc
	sessionCancel context.CancelFunc
	currentURL    string
}

func NewBrowserSkill(workdir string) *BrowserSkill {
	return &BrowserSkill{workdir: workdir}
}

func (b *BrowserSkill) Name() string {
	return "browser"
}

func (b *BrowserSkill) Description() string {
	return "Drive a browser session across steps. Give a URL to open it, or JSON with an action: 'navigate', 'text' (readable page text), 'content' (raw HTML), 'click', 'type', 'press', 'scroll', 'wait', 'back', 'forward', 'reload', 'screenshot', 'close'."
}

func (b *BrowserSkill) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{
					"navigate", "text", "content", "click", "type",
					"press", "scroll", "wait", "back", "forward",
					"reload", "screenshot", "close",
				},
				"description": "The action to perform.",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to open (required for 'navigate')",
			},
			"selector": map[string]any{
				"type":        "string",
				"description": "CSS selector for the target element (required for 'click', 'type'; optional for 'scroll', 'wait')",
			},
			"text": map[string]any{
				"type":        "string",
				"description": "The text to type or key to press (required for 'type', 'press')",
			},
			"wait_seconds": map[string]any{
				"type":        "integer",
				"description": "Time to wait in seconds (used with 'wait')",
			},
		},
		"required": []string{"action"},
	}
}

type browserArgs struct {
	Action      string `json:"action"`
	URL         string `json:"url"`
	Selector    string `json:"selector"`
	Text        string `json:"text"`
	WaitSeconds int    `json:"wait_seconds"`
}

// Actions that make sense without any argument, so a step can thread
// them through as plain text.
var bareBrowserActions = map[string]bool{
	"text":       true,
	"content":    true,
	"back":       true,
	"forward":    true,
	"reload":     true,
	"screenshot": true,
	"close":      true,
}

// parseBrowserInput accepts the JSON argument form, a bare URL (treated
// as navigate, so a previous step's output can feed this skill
// directly), or a bare argument-free action name.
func parseBrowserInput(input string) (browserArgs, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args browserArgs
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return browserArgs{}, fmt.Errorf("invalid input: %v", err)
		}
		return args, nil
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return browserArgs{Action: "navigate", URL: trimmed}, nil
	}
	if bareBrowserActions[trimmed] {
		return browserArgs{Action: trimmed}, nil
	}
	return browserArgs{}, fmt.Errorf("expected a URL, an action name, or JSON args, got %q", trimmed)
}

func (b *BrowserSkill) ensureSession(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessionCtx != nil {
		select {
		case <-b.sessionCtx.Done():
			b.teardown()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.sessionCtx, b.sessionCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.sessionCtx)
}

func (b *BrowserSkill) teardown() {
	if b.sessionCancel != nil {
		b.sessionCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.sessionCtx = nil
	b.allocCtx = nil
	b.currentURL = ""
}

func (b *BrowserSkill) Invoke(ctx context.Context, input string) (string, error) {
	args, err := parseBrowserInput(input)
	if err != nil {
		return "", err
	}

	if args.Action == "close" {
		b.mu.Lock()
		b.teardown()
		b.mu.Unlock()
		return "Browser session closed.", nil
	}

	if err := b.ensureSession(ctx); err != nil {
		return "", fmt.Errorf("failed to start browser: %v", err)
	}

	actionCtx, cancel := context.WithTimeout(b.sessionCtx, 60*time.Second)
	defer cancel()

	var result string

	switch args.Action {
	case "navigate":
		if args.URL == "" {
			return "Error: url is required for 'navigate'", nil
		}
		err = chromedp.Run(actionCtx,
			chromedp.Navigate(args.URL),
			chromedp.Location(&b.currentURL),
		)
		result = fmt.Sprintf("Opened %s", args.URL)

	case "text":
		var html string
		if err = chromedp.Run(actionCtx, outerHTML(&html)); err == nil {
			result, err = readableText(html, b.currentURL)
		}

	case "content":
		var html string
		err = chromedp.Run(actionCtx, outerHTML(&html))
		if len(html) > 50000 {
			html = html[:50000] + "\n... (truncated)"
		}
		result = html

	case "click":
		if args.Selector == "" {
			return "Error: selector required", nil
		}
		err = chromedp.Run(actionCtx,
			chromedp.Click(args.Selector, chromedp.ByQuery),
			chromedp.Location(&b.currentURL),
		)
		result = fmt.Sprintf("Clicked %s", args.Selector)

	case "type":
		if args.Selector == "" || args.Text == "" {
			return "Error: selector and text required", nil
		}
		err = chromedp.Run(actionCtx, chromedp.SendKeys(args.Selector, args.Text, chromedp.ByQuery))
		result = fmt.Sprintf("Typed text in %s", args.Selector)

	case "press":
		if args.Text == "" {
			return "Error: text (key) required", nil
		}
		err = chromedp.Run(actionCtx, chromedp.KeyEvent(args.Text))
		result = fmt.Sprintf("Pressed key: %s", args.Text)

	case "scroll":
		if args.Selector != "" {
			err = chromedp.Run(actionCtx, chromedp.ScrollIntoView(args.Selector, chromedp.ByQuery))
			result = fmt.Sprintf("Scrolled to %s", args.Selector)
		} else {
			err = chromedp.Run(actionCtx, chromedp.Evaluate("window.scrollTo(0, document.body.scrollHeight)", nil))
			result = "Scrolled to bottom"
		}

	case "wait":
		if args.Selector != "" {
			err = chromedp.Run(actionCtx, chromedp.WaitVisible(args.Selector, chromedp.ByQuery))
			result = fmt.Sprintf("Finished waiting for %s", args.Selector)
		} else if args.WaitSeconds > 0 {
			time.Sleep(time.Duration(args.WaitSeconds) * time.Second)
			result = fmt.Sprintf("Waited for %d seconds", args.WaitSeconds)
		} else {
			result = "Nothing to wait for"
		}

	case "back":
		err = chromedp.Run(actionCtx, chromedp.NavigateBack(), chromedp.Location(&b.currentURL))
		result = "Navigated back"

	case "forward":
		err = chromedp.Run(actionCtx, chromedp.NavigateForward(), chromedp.Location(&b.currentURL))
		result = "Navigated forward"

	case "reload":
		err = chromedp.Run(actionCtx, chromedp.Reload())
		result = "Page reloaded"

	case "screenshot":
		var buf []byte
		err = chromedp.Run(actionCtx, chromedp.CaptureScreenshot(&buf))
		if err == nil {
			result, err = b.saveScreenshot(buf)
		}

	default:
		return "Invalid action", nil
	}

	if err != nil {
		return fmt.Sprintf("Browser action failed: %v", err), nil
	}

	return result, nil
}

func outerHTML(html *string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		*html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	})
}

// readableText runs the same extraction pipeline the scraper uses, so
// the output chains cleanly into summarize or write steps.
func readableText(html, pageURL string) (string, error) {
	if pageURL == "" {
		pageURL = "about:blank"
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %v", err)
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return "", fmt.Errorf("failed to extract page text: %v", err)
	}
	text := bluemonday.StrictPolicy().Sanitize(article.TextContent)
	if len(text) > 50000 {
		text = text[:50000] + "\n... (truncated)"
	}
	if article.Title != "" {
		return fmt.Sprintf("TITLE: %s\n\n%s", article.Title, text), nil
	}
	return text, nil
}

func (b *BrowserSkill) saveScreenshot(buf []byte) (string, error) {
	dir := filepath.Join(b.workdir, "screenshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("screenshot_%d.png", time.Now().Unix()))
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", err
	}
	return fmt.Sprintf("Screenshot saved to %s", path), nil
}
