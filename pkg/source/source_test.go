package source_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/bidfeed/pkg/domain"
	"github.com/umputun/bidfeed/pkg/source"
	"github.com/umputun/bidfeed/pkg/source/mocks"
)

func TestAPISource_WithMockPoster(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	poster := &mocks.PosterMock{
		PostFormFunc: func(ctx context.Context, urlStr string, form url.Values) (*source.Response, error) {
			if strings.HasSuffix(urlStr, "/whebd-server/tendererNotice/list") {
				return nil, errors.New("connection reset")
			}
			return &source.Response{Body: []byte(`{"code":0,"data":[{"projectName":"p","id":"x y","publishDate":"2024-06-01 00:00:00"}]}`)}, nil
		},
	}
	src := source.NewAPISource(poster, source.APIParams{BaseURL: "https://bids.example.com", PageSize: 5, Lookback: time.Hour})

	results := src.Fetch(context.Background(), now)
	require.Len(t, results, 4)
	require.Len(t, poster.PostFormCalls(), 4)
	assert.Equal(t, "https://bids.example.com/whebd-server/tendererNotice/list", poster.PostFormCalls()[0].URLStr)
	assert.Equal(t, "5", poster.PostFormCalls()[0].Form.Get("limit"))

	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "connection reset")
	for _, res := range results[1:] {
		require.NoError(t, res.Err)
		require.Len(t, res.Items, 1)
		assert.Contains(t, res.Items[0].Link, "&id=x+y")
	}
}

func TestAPISource_SelectedCategories(t *testing.T) {
	poster := &mocks.PosterMock{
		PostFormFunc: func(ctx context.Context, urlStr string, form url.Values) (*source.Response, error) {
			return &source.Response{Body: []byte(`{"code":0,"data":[]}`)}, nil
		},
	}
	src := source.NewAPISource(poster, source.APIParams{
		BaseURL:    "https://bids.example.com",
		PageSize:   20,
		Categories: []domain.Category{domain.WinningBidResult},
	})

	results := src.Fetch(context.Background(), time.Now())
	require.Len(t, results, 1)
	assert.Equal(t, domain.WinningBidResult, results[0].Category)
	require.Len(t, poster.PostFormCalls(), 1)
	assert.Equal(t, "https://bids.example.com/whebd-server/winBidBulletin/list", poster.PostFormCalls()[0].URLStr)
}

func TestHTMLSource_WithMockGetter(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("fetch error", func(t *testing.T) {
		getter := &mocks.GetterMock{
			GetFunc: func(ctx context.Context, urlStr string) (*source.Response, error) {
				return nil, errors.New("dns failure")
			},
		}
		res := source.NewHTMLSource(getter, source.HTMLParams{BaseURL: "https://bids.example.com"}).Fetch(context.Background(), now)
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "dns failure")
		assert.Empty(t, res.Items)
		require.Len(t, getter.GetCalls(), 1)
		assert.Equal(t, "https://bids.example.com", getter.GetCalls()[0].URLStr)
	})

	t.Run("empty title and href skipped", func(t *testing.T) {
		page := `<div id="tenderNotice">
			<li class="tLi"><a class="project" href="/a"> </a><span class="time">2024-06-01</span></li>
			<li class="tLi"><a class="project">无链接</a><span class="time">2024-06-01</span></li>
			<li class="tLi"><a class="project" href="/c">有效</a><span class="time">2024-06-01</span></li>
		</div>`
		getter := &mocks.GetterMock{
			GetFunc: func(ctx context.Context, urlStr string) (*source.Response, error) {
				return &source.Response{ContentType: "text/html", Body: []byte(page)}, nil
			},
		}
		res := source.NewHTMLSource(getter, source.HTMLParams{BaseURL: "https://bids.example.com"}).Fetch(context.Background(), now)
		require.NoError(t, res.Err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "https://bids.example.com/c", res.Items[0].Link)
		require.Len(t, res.Skipped, 2)
		assert.Equal(t, "empty project title", res.Skipped[0].Reason)
		assert.Equal(t, "empty project link", res.Skipped[1].Reason)
	})
}
