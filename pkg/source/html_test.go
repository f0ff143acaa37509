package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/umputun/bidfeed/pkg/domain"
)

const homePage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>武汉公共资源交易平台</title></head>
<body>
<div id="news"><ul><li class="tLi"><a class="project" href="/news/1">not a tender</a><span class="time">2024-06-01</span></li></ul></div>
<div id="tenderNotice">
  <ul>
    <li class="tLi"><a class="project" href="https://other.example.com/notice/1"> 绝对链接项目 </a><span class="time">2024-06-10</span></li>
    <li class="tLi"><a class="project" href="/notice/2">根路径项目</a><span class="time">2024-06-12</span></li>
    <li class="tLi"><a class="project" href="cmsIndex?path=tendererNotice&amp;id=3">前端路由项目</a><span class="time">bad date</span></li>
    <li class="tLi"><a class="project" href="/notice/4">没有时间</a></li>
    <li class="tLi"><span class="time">2024-06-11</span></li>
  </ul>
</div>
</body></html>`

func newHTMLServer(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHTMLSource(baseURL string, maxEntries int) *HTMLSource {
	return NewHTMLSource(NewHTTPClient(5*time.Second, "test-agent"), HTMLParams{
		BaseURL:    baseURL,
		MaxEntries: maxEntries,
		Location:   testLoc,
	})
}

func TestHTMLSource_Fetch(t *testing.T) {
	srv := newHTMLServer(t, "text/html; charset=utf-8", []byte(homePage))

	res := newTestHTMLSource(srv.URL, 15).Fetch(context.Background(), testNow)
	require.NoError(t, res.Err)
	assert.Equal(t, HTMLName, res.Source)
	assert.Equal(t, domain.TenderNotice, res.Category)
	require.Len(t, res.Items, 3)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 3, res.Skipped[0].Index)
	assert.Equal(t, "missing time label", res.Skipped[0].Reason)
	assert.Equal(t, 4, res.Skipped[1].Index)
	assert.Equal(t, "missing project anchor", res.Skipped[1].Reason)

	// absolute href kept as is
	assert.Equal(t, "[招标公告] 绝对链接项目", res.Items[0].Title)
	assert.Equal(t, "https://other.example.com/notice/1", res.Items[0].Link)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, testLoc), res.Items[0].Published)
	assert.Equal(t, "项目名称: 绝对链接项目\n发布时间: 2024-06-10\n类型: 招标公告", res.Items[0].Description)

	// root-relative href prefixed with base url
	assert.Equal(t, srv.URL+"/notice/2", res.Items[1].Link)

	// client-side route goes after the fragment marker, bad date falls back to run time
	assert.Equal(t, srv.URL+"/#cmsIndex?path=tendererNotice&id=3", res.Items[2].Link)
	assert.Equal(t, testNow, res.Items[2].Published)

	for _, item := range res.Items {
		require.NoError(t, item.Validate())
		assert.Equal(t, domain.TenderNotice, item.Category)
		assert.True(t, strings.HasPrefix(item.Title, "[招标公告] "))
	}
}

func TestHTMLSource_MaxEntries(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="tenderNotice"><ul>`)
	for i := 0; i < 20; i++ {
		sb.WriteString(`<li class="tLi"><a class="project" href="/n">项目</a><span class="time">2024-06-01</span></li>`)
	}
	sb.WriteString(`</ul></div></body></html>`)
	srv := newHTMLServer(t, "text/html", []byte(sb.String()))

	res := newTestHTMLSource(srv.URL, 15).Fetch(context.Background(), testNow)
	require.NoError(t, res.Err)
	assert.Len(t, res.Items, 15)

	res = newTestHTMLSource(srv.URL, 4).Fetch(context.Background(), testNow)
	require.NoError(t, res.Err)
	assert.Len(t, res.Items, 4)
}

func TestHTMLSource_GBK(t *testing.T) {
	page := `<html><body><div id="tenderNotice"><ul><li class="tLi"><a class="project" href="/n/1">汉阳区道路工程</a><span class="time">2024-06-01</span></li></ul></div></body></html>`
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(page)
	require.NoError(t, err)
	srv := newHTMLServer(t, "text/html; charset=gbk", []byte(encoded))

	res := newTestHTMLSource(srv.URL, 15).Fetch(context.Background(), testNow)
	require.NoError(t, res.Err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "[招标公告] 汉阳区道路工程", res.Items[0].Title)
}

func TestHTMLSource_Failures(t *testing.T) {
	t.Run("section missing", func(t *testing.T) {
		srv := newHTMLServer(t, "text/html", []byte(`<html><body><div id="other"></div></body></html>`))
		res := newTestHTMLSource(srv.URL, 15).Fetch(context.Background(), testNow)
		require.ErrorIs(t, res.Err, ErrSectionMissing)
		assert.Empty(t, res.Items)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		res := newTestHTMLSource(srv.URL, 15).Fetch(context.Background(), testNow)
		require.ErrorIs(t, res.Err, ErrUnexpectedStatus)
		assert.Empty(t, res.Items)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		res := newTestHTMLSource(url, 15).Fetch(context.Background(), testNow)
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "fetch home page")
	})
}
