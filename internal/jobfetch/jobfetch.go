// Package jobfetch downloads a job posting and reduces it to the plain
// description text the keyword matcher works on.
package jobfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (compatible; atscore/1.0)"
	DefaultMaxBodySize = 5 << 20
)

// Posting is a fetched job description.
type Posting struct {
	URL   string
	Title string
	Text  string
}

// Error represents an error during job posting fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int // upstream status, 0 when no response was received
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

const msgInvalidURL = "invalid URL"

// IsInvalidURL reports whether err was caused by a malformed or non-HTTP
// URL rather than by the remote site.
func IsInvalidURL(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Message == msgInvalidURL
}

// Options configures the fetch behavior.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64
}

// Fetcher retrieves job postings over HTTP.
type Fetcher struct {
	client *http.Client
	opts   Options
}

// New creates a Fetcher. Zero options take the package defaults.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// Fetch downloads rawURL and extracts the posting text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Posting, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &Error{URL: rawURL, Message: msgInvalidURL, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodySize+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	if int64(len(body)) > f.opts.MaxBodySize {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("response exceeds %d bytes", f.opts.MaxBodySize)}
	}

	posting := &Posting{URL: rawURL}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		posting.Text = cleanText(string(body))
	} else {
		posting.Title, posting.Text, err = ExtractPosting(string(body))
		if err != nil {
			return nil, &Error{URL: rawURL, Message: "failed to parse HTML", Cause: err}
		}
	}

	if posting.Text == "" {
		return nil, &Error{URL: rawURL, Message: "page contains no job description text"}
	}
	return posting, nil
}

// noiseSelectors are removed before the content is located.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe", "svg", "form",
	"header", "footer", "nav", "aside",
	".advertisement", ".ad", ".sidebar", ".cookie-banner", ".popup",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}

// contentSelectors locate the description, most specific first. Job board
// markup is tried before generic article containers.
var contentSelectors = []string{
	".job-description", "#job-description", ".jobDescription", "#jobDescriptionText",
	".description__text", ".posting-page", ".job-content", "#job-content",
	"[itemprop=description]",
	"main", "article", ".content", "#content",
}

var (
	linkTarget   = regexp.MustCompile(`\]\([^)]*\)`)
	imageMarkup  = regexp.MustCompile(`!\[[^\]]*\]`)
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	blankLineRun = regexp.MustCompile(`\n{3,}`)
)

// ExtractPosting returns the page title and the description text of an
// HTML job posting.
func ExtractPosting(html string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	content := doc.Find("body")
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 && strings.TrimSpace(sel.First().Text()) != "" {
			content = sel.First()
			break
		}
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return title, cleanText(content.Text()), nil
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return title, cleanText(content.Text()), nil
	}
	return title, cleanText(stripMarkdown(md)), nil
}

// stripMarkdown drops link targets and image markup that would otherwise
// feed URLs into keyword extraction. Emphasis and list markers are kept;
// the tokenizer ignores them.
func stripMarkdown(md string) string {
	md = imageMarkup.ReplaceAllString(md, "")
	md = linkTarget.ReplaceAllString(md, "]")
	return strings.NewReplacer("[", "", "]", "").Replace(md)
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
