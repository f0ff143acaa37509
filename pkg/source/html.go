package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"golang.org/x/net/html/charset"

	"github.com/umputun/bidfeed/pkg/domain"
)

//go:generate moq -out mocks/getter.go -pkg mocks -skip-ensure -fmt goimports . Getter

// HTMLName identifies the home page scraper in results and logs
const HTMLName = "html"

// ErrSectionMissing is returned when the page has no tender-notice block
var ErrSectionMissing = errors.New("tender notice section not found")

const (
	sectionSelector = "div#tenderNotice"
	entrySelector   = "li.tLi"
	anchorSelector  = "a.project"
	timeSelector    = "span.time"
	pageDateLayout  = "2006-01-02"
)

// Getter fetches pages
type Getter interface {
	Get(ctx context.Context, urlStr string) (*Response, error)
}

// HTMLParams defines home page scraper settings
type HTMLParams struct {
	BaseURL    string
	MaxEntries int
	Location   *time.Location
}

// HTMLSource scrapes the tender notice list from the platform home page.
// It serves as a fallback and only ever yields TenderNotice items.
type HTMLSource struct {
	getter     Getter
	baseURL    string
	maxEntries int
	loc        *time.Location
	cleaner    *textCleaner
}

// NewHTMLSource makes a new home page scraper
func NewHTMLSource(getter Getter, params HTMLParams) *HTMLSource {
	res := &HTMLSource{
		getter:     getter,
		baseURL:    params.BaseURL,
		maxEntries: params.MaxEntries,
		loc:        params.Location,
		cleaner:    newTextCleaner(),
	}
	if res.loc == nil {
		res.loc = time.Local
	}
	if res.maxEntries <= 0 {
		res.maxEntries = 15
	}
	return res
}

// Fetch loads the home page and extracts up to maxEntries tender notices
func (s *HTMLSource) Fetch(ctx context.Context, now time.Time) domain.Result {
	res := domain.Result{Source: HTMLName, Category: domain.TenderNotice}

	doc, err := s.document(ctx)
	if err != nil {
		res.Err = fmt.Errorf("fetch home page: %w", err)
		return res
	}

	section := doc.Find(sectionSelector).First()
	if section.Length() == 0 {
		res.Err = ErrSectionMissing
		return res
	}

	entries := section.Find(entrySelector)
	if entries.Length() > s.maxEntries {
		entries = entries.Slice(0, s.maxEntries)
	}

	entries.Each(func(i int, li *goquery.Selection) {
		item, skip := s.normalize(i, li, now)
		if skip != nil {
			res.Skipped = append(res.Skipped, skip)
			return
		}
		res.Items = append(res.Items, item)
	})
	lgr.Printf("[DEBUG] home page: %d entries, %d items, %d skipped", entries.Length(), len(res.Items), len(res.Skipped))
	return res
}

// document fetches the home page and parses it, converting the body to utf-8 first
func (s *HTMLSource) document(ctx context.Context) (*goquery.Document, error) {
	resp, err := s.getter.Get(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}

	body, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// normalize converts a list entry into an item, entries without an anchor or a time label are skipped
func (s *HTMLSource) normalize(idx int, li *goquery.Selection, now time.Time) (domain.Item, *domain.SkipError) {
	anchor := li.Find(anchorSelector).First()
	if anchor.Length() == 0 {
		return domain.Item{}, &domain.SkipError{Index: idx, Reason: "missing project anchor"}
	}
	label := li.Find(timeSelector).First()
	if label.Length() == 0 {
		return domain.Item{}, &domain.SkipError{Index: idx, Reason: "missing time label"}
	}

	name := s.cleaner.clean(anchor.Text())
	if name == "" {
		return domain.Item{}, &domain.SkipError{Index: idx, Reason: "empty project title"}
	}
	href := strings.TrimSpace(anchor.AttrOr("href", ""))
	if href == "" {
		return domain.Item{}, &domain.SkipError{Index: idx, Reason: "empty project link"}
	}
	rawDate := strings.TrimSpace(label.Text())

	return domain.Item{
		Title:       domain.Title(domain.TenderNotice, name),
		Link:        resolveLink(s.baseURL, href),
		Published:   domain.ParseTime(rawDate, pageDateLayout, s.loc, now),
		Description: domain.Summary(domain.TenderNotice, name, rawDate),
		Category:    domain.TenderNotice,
	}, nil
}
