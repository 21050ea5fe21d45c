package images

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxWebpageBytes     = 1 << 20 // 1MB
	imageTypePrefix     = "image/"
)

// Options configures a Resolver. The zero value gives a resolver with a
// default client and an empty allow-list, meaning the webpage fallback never
// fires.
type Options struct {
	Client         *http.Client
	UserAgent      string
	TrustedDomains []string
}

// Resolver produces a best-effort lead-image URL for a source entry by trying
// a fixed cascade of extraction strategies. It never returns an error; every
// failure collapses to the empty string.
type Resolver struct {
	client         *http.Client
	userAgent      string
	trustedDomains []string
}

// NewResolver creates a resolver from the given options.
func NewResolver(opts Options) *Resolver {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Resolver{
		client:         client,
		userAgent:      opts.UserAgent,
		trustedDomains: opts.TrustedDomains,
	}
}

// Resolve runs the cascade against one entry: structured media attachments,
// then ad-hoc custom fields, then inline <img> tags in the entry's HTML
// fragments, then (for allow-listed hosts only) a live fetch of the entry's
// own page. The first valid hit wins.
func (r *Resolver) Resolve(e Entry) string {
	if img := fromAttachments(e); img != "" {
		return img
	}
	if img := fromCustomFields(e); img != "" {
		return img
	}
	if img := fromFragments(e); img != "" {
		return img
	}
	return r.FromWebpage(e.Link)
}

// fromAttachments scans the structured media fields in declaration order.
// Media contents, thumbnails, and enclosures are accepted on a declared image
// type or an untyped but valid image URL; typed links require an image type,
// since feed links otherwise point at pages, not media.
func fromAttachments(e Entry) string {
	media := [][]Attachment{e.MediaContents, e.MediaThumbnails, e.Enclosures}
	for _, group := range media {
		for _, att := range group {
			if att.Type != "" && !isImageType(att.Type) {
				continue
			}
			if img, ok := acceptImageURL(att.URL); ok {
				return img
			}
		}
	}
	for _, att := range e.Links {
		if !isImageType(att.Type) {
			continue
		}
		if img, ok := acceptImageURL(att.URL); ok {
			return img
		}
	}
	return ""
}

func isImageType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), imageTypePrefix)
}

func fromCustomFields(e Entry) string {
	for _, field := range adHocFields {
		if img, ok := acceptImageURL(e.Custom[field]); ok {
			return img
		}
	}
	return ""
}

// fromFragments scans summary, then each content block, then description for
// the first usable inline <img>.
func fromFragments(e Entry) string {
	fragments := make([]string, 0, len(e.Contents)+2)
	fragments = append(fragments, e.Summary)
	fragments = append(fragments, e.Contents...)
	fragments = append(fragments, e.Description)

	for _, fragment := range fragments {
		if fragment == "" || !strings.Contains(fragment, "<") {
			continue
		}
		if img := firstInlineImage(fragment); img != "" {
			return img
		}
	}
	return ""
}

// firstInlineImage parses an HTML fragment and returns the first <img> whose
// src, lazy-load data-src, or leading srcset candidate validates.
func firstInlineImage(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src"} {
			if raw, ok := sel.Attr(attr); ok {
				if img, ok := acceptImageURL(raw); ok {
					found = img
					return false
				}
			}
		}
		if srcset, ok := sel.Attr("srcset"); ok {
			if img, ok := acceptImageURL(firstSrcsetURL(srcset)); ok {
				found = img
				return false
			}
		}
		return true
	})
	return found
}

// firstSrcsetURL extracts the URL of the first candidate in a responsive
// srcset declaration.
func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// FromWebpage fetches pageURL and extracts a lead image from its Open Graph,
// Twitter Card, or generic featured-image meta tags. The fetch only happens
// when the page's host is on the trusted-domain allow-list, keeping bulk runs
// from hammering arbitrary slow sites.
func (r *Resolver) FromWebpage(pageURL string) string {
	if pageURL == "" || !r.Trusted(pageURL) {
		return ""
	}

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("Webpage image fetch failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxWebpageBytes))
	if err != nil {
		return ""
	}

	selectors := []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
		`meta[name="featured-image"]`,
	}
	for _, selector := range selectors {
		if raw, ok := doc.Find(selector).First().Attr("content"); ok {
			if img, ok := acceptImageURL(raw); ok {
				return img
			}
		}
	}
	return ""
}

// Trusted reports whether pageURL's host is covered by the allow-list.
// Subdomains of a listed domain count.
func (r *Resolver) Trusted(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, domain := range r.trustedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
