// Package webtools provides the in-process tools offered to the gateway's
// inner search agents next to the external MCP servers: web.fetch_page reads
// a page's main text, news.headlines searches an RSS news feed.
package webtools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/mcp"
	"github.com/codeready-toolchain/scout/pkg/version"
)

// Tool names, in the same "server.tool" form as MCP tools.
const (
	FetchPageTool = "web.fetch_page"
	HeadlinesTool = "news.headlines"
)

const (
	defaultMaxBytes = 2 << 20
	defaultMaxChars = 12000
	defaultMaxItems = 10
	httpTimeout     = 30 * time.Second
)

var _ agent.ToolExecutor = (*Executor)(nil)

// ErrBlockedAddress is returned for connections to loopback, private,
// link-local or unspecified addresses unless AllowPrivate is set.
var ErrBlockedAddress = errors.New("address not allowed")

// sharedAddressSpace is the carrier-grade NAT range, not covered by
// netip.Addr.IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Executor implements agent.ToolExecutor for the local web tools. Stateless
// apart from its HTTP client, so one instance serves concurrent runs.
type Executor struct {
	cfg    config.WebToolsConfig
	client *http.Client
	feeds  *gofeed.Parser
}

// New creates an executor. A nil client gets a default with a 30s timeout
// that refuses internal addresses after DNS resolution, redirects included.
func New(cfg *config.WebToolsConfig, client *http.Client) *Executor {
	e := &Executor{}
	if cfg != nil {
		e.cfg = *cfg
	}
	if client == nil {
		client = newHTTPClient(e.cfg.AllowPrivate)
	}
	e.client = client
	if e.cfg.FetchMaxBytes <= 0 {
		e.cfg.FetchMaxBytes = defaultMaxBytes
	}
	if e.cfg.FetchMaxChars <= 0 {
		e.cfg.FetchMaxChars = defaultMaxChars
	}
	if e.cfg.NewsMaxItems <= 0 {
		e.cfg.NewsMaxItems = defaultMaxItems
	}

	e.feeds = gofeed.NewParser()
	e.feeds.Client = client
	e.feeds.UserAgent = version.Full()
	return e
}

func newHTTPClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = rejectInternal
	}
	return &http.Client{
		Timeout: httpTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// rejectInternal runs for every outgoing connection with the resolved
// address.
func rejectInternal(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	if isInternal(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func isInternal(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}

// ListTools returns the enabled tools.
func (e *Executor) ListTools(context.Context) ([]agent.ToolDefinition, error) {
	var defs []agent.ToolDefinition
	if e.cfg.FetchPageEnabled() {
		defs = append(defs, agent.ToolDefinition{
			Name:             FetchPageTool,
			Description:      "Download a web page and return its main readable text. Use it to read a search result in full.",
			ParametersSchema: `{"type":"object","properties":{"url":{"type":"string","description":"Absolute http(s) URL of the page"}},"required":["url"]}`,
		})
	}
	if e.cfg.NewsFeedURL != "" {
		defs = append(defs, agent.ToolDefinition{
			Name:             HeadlinesTool,
			Description:      "Search recent news headlines. Returns titles, publication dates and links, newest first as published by the feed.",
			ParametersSchema: `{"type":"object","properties":{"query":{"type":"string","description":"News search query"}},"required":["query"]}`,
		})
	}
	return defs, nil
}

// Execute runs one tool call. Failures are returned as IsError results.
func (e *Executor) Execute(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	res := &agent.ToolResult{CallID: call.ID, Name: call.Name}

	var (
		content string
		err     error
	)
	switch mcp.NormalizeToolName(call.Name) {
	case FetchPageTool:
		content, err = e.fetchPage(ctx, call.Arguments)
	case HeadlinesTool:
		content, err = e.headlines(ctx, call.Arguments)
	default:
		err = fmt.Errorf("unknown tool %q", call.Name)
	}
	if err != nil {
		slog.Debug("Web tool failed", "tool", call.Name, "error", err)
		res.Content = err.Error()
		res.IsError = true
		return res, nil
	}
	res.Content = content
	return res, nil
}

// Close is a no-op.
func (e *Executor) Close() error { return nil }

func stringArg(raw, name string) (string, error) {
	args, err := mcp.ParseArguments(raw, name)
	if err != nil {
		return "", err
	}
	v, _ := args[name].(string)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	return v, nil
}

func (e *Executor) fetchPage(ctx context.Context, rawArgs string) (string, error) {
	raw, err := stringArg(rawArgs, "url")
	if err != nil {
		return "", err
	}
	pageURL, err := url.Parse(raw)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return "", fmt.Errorf("invalid url %q: an absolute http(s) URL is required", raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", version.Full())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetching %s: HTTP %d", pageURL, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, e.cfg.FetchMaxBytes)
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	var title, text string
	switch {
	case mediaType == "text/plain":
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", pageURL, err)
		}
		text = string(data)
	case mediaType == "" || strings.Contains(mediaType, "html"):
		article, err := readability.FromReader(body, pageURL)
		if err != nil {
			return "", fmt.Errorf("extracting %s: %w", pageURL, err)
		}
		title, text = article.Title, article.TextContent
	default:
		return "", fmt.Errorf("unsupported content type %q at %s", mediaType, pageURL)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no readable content found at " + pageURL.String())
	}
	if r := []rune(text); len(r) > e.cfg.FetchMaxChars {
		text = string(r[:e.cfg.FetchMaxChars]) + "\n[truncated]"
	}

	var b strings.Builder
	if title = strings.TrimSpace(title); title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	fmt.Fprintf(&b, "URL: %s\n\n%s", pageURL, text)
	return b.String(), nil
}

func (e *Executor) headlines(ctx context.Context, rawArgs string) (string, error) {
	if e.cfg.NewsFeedURL == "" {
		return "", errors.New("news search is not configured")
	}
	query, err := stringArg(rawArgs, "query")
	if err != nil {
		return "", err
	}

	feedURL := fmt.Sprintf(e.cfg.NewsFeedURL, url.QueryEscape(query))
	feed, err := e.feeds.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return "", fmt.Errorf("news search for %q failed: %w", query, err)
	}
	if len(feed.Items) == 0 {
		return fmt.Sprintf("No news found for %q.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "News results for %q:\n", query)
	n := 0
	for _, item := range feed.Items {
		if n == e.cfg.NewsMaxItems {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s", n, title)
		if published := itemTime(item); !published.IsZero() {
			fmt.Fprintf(&b, " (%s)", published.Format("2006-01-02"))
		}
		if link := itemLink(item); link != "" {
			fmt.Fprintf(&b, "\n   %s", link)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}

func itemLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}
