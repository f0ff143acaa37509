package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/bidfeed/pkg/domain"
)

//go:generate moq -out mocks/poster.go -pkg mocks -skip-ensure -fmt goimports . Poster

// APIName identifies the list API in results and logs
const APIName = "api"

const (
	apiDateLayout    = "2006-01-02"
	recordTimeLayout = "2006-01-02 15:04:05"
	detailRoute      = "/#/cmsIndex"
)

// Poster sends form posts to the list API
type Poster interface {
	PostForm(ctx context.Context, urlStr string, form url.Values) (*Response, error)
}

// APIParams defines list API settings
type APIParams struct {
	BaseURL    string
	PageSize   int
	Lookback   time.Duration
	Location   *time.Location
	Categories []domain.Category // defaults to all categories
}

// APISource fetches announcements from the platform's JSON list API, one request per category
type APISource struct {
	poster     Poster
	baseURL    string
	pageSize   int
	lookback   time.Duration
	loc        *time.Location
	categories []domain.Category
	cleaner    *textCleaner
}

// envelope is the list API response wrapper
type envelope struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewAPISource makes a new list API source
func NewAPISource(poster Poster, params APIParams) *APISource {
	res := &APISource{
		poster:     poster,
		baseURL:    params.BaseURL,
		pageSize:   params.PageSize,
		lookback:   params.Lookback,
		loc:        params.Location,
		categories: params.Categories,
		cleaner:    newTextCleaner(),
	}
	if res.loc == nil {
		res.loc = time.Local
	}
	if len(res.categories) == 0 {
		res.categories = domain.Categories()
	}
	return res
}

// Fetch queries every category in order and returns one result per category.
// A failed category never stops the remaining ones.
func (s *APISource) Fetch(ctx context.Context, now time.Time) []domain.Result {
	results := make([]domain.Result, 0, len(s.categories))
	for _, cat := range s.categories {
		lgr.Printf("[INFO] fetching %s", cat)
		results = append(results, s.FetchCategory(ctx, cat, now))
	}
	return results
}

// FetchCategory queries a single category for the lookback window ending at now
func (s *APISource) FetchCategory(ctx context.Context, cat domain.Category, now time.Time) domain.Result {
	res := domain.Result{Source: APIName, Category: cat}

	records, err := s.records(ctx, cat, now)
	if err != nil {
		res.Err = fmt.Errorf("fetch %s: %w", cat, err)
		return res
	}

	for i, raw := range records {
		item, err := s.normalize(cat, raw, now)
		if err != nil {
			res.Skipped = append(res.Skipped, &domain.SkipError{Index: i, Reason: "malformed record", Err: err})
			continue
		}
		res.Items = append(res.Items, item)
	}
	lgr.Printf("[DEBUG] %s: %d records, %d items, %d skipped", cat, len(records), len(res.Items), len(res.Skipped))
	return res
}

// records posts the list query and unwraps the response envelope
func (s *APISource) records(ctx context.Context, cat domain.Category, now time.Time) ([]json.RawMessage, error) {
	local := now.In(s.loc)
	form := url.Values{}
	form.Set("page", "1")
	form.Set("limit", strconv.Itoa(s.pageSize))
	form.Set("startDate", local.Add(-s.lookback).Format(apiDateLayout))
	form.Set("endDate", local.Format(apiDateLayout))

	resp, err := s.poster.PostForm(ctx, s.baseURL+cat.APIPath(), form)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Code == nil || *env.Code != 0 {
		code := "missing"
		if env.Code != nil {
			code = strconv.Itoa(*env.Code)
		}
		return nil, fmt.Errorf("api error, code %s %q: %w", code, env.Msg, domain.ErrNoData)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("empty data field: %w", domain.ErrNoData)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// normalize converts a raw record into an item, missing fields get defaults
func (s *APISource) normalize(cat domain.Category, raw json.RawMessage, now time.Time) (domain.Item, error) {
	var rec domain.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Item{}, fmt.Errorf("decode record: %w", err)
	}

	name := s.cleaner.clean(rec.ProjectName.Or(""))
	if name == "" {
		name = domain.NoTitle
	}
	rawDate := rec.PublishDate.Or("")

	return domain.Item{
		Title:       domain.Title(cat, name),
		Link:        s.detailLink(cat, rec.ID.Or("")),
		Published:   domain.ParseTime(rawDate, recordTimeLayout, s.loc, now),
		Description: domain.Summary(cat, name, rawDate),
		Category:    cat,
	}, nil
}

// detailLink builds the single-page-app link to an announcement
func (s *APISource) detailLink(cat domain.Category, id string) string {
	return fmt.Sprintf("%s%s?path=%s&type=detail&id=%s", s.baseURL, detailRoute, cat.Segment(), url.QueryEscape(id))
}
