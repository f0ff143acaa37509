package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/bidfeed/pkg/domain"
	"github.com/umputun/bidfeed/pkg/feed/mocks"
)

var testSettings = Settings{
	Title:              "武汉公共资源交易平台 - 招标信息",
	Link:               "https://www.whzbtbxt.cn",
	Description:        "自动抓取武汉公共资源交易平台的招标公告、变更公告、中标结果等信息",
	EmptyDescription:   "暂无最新招标信息",
	FailureDescription: "数据抓取暂时出现问题",
	Language:           "zh-cn",
	Pretty:             true,
}

func newTestEmitter(t *testing.T, collector Collector) (*Emitter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rss.xml")
	e := NewEmitter(collector, NewWriter(path), testSettings)
	e.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return e, path
}

func readFeed(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = Verify(data)
	require.NoError(t, err)
	return string(data)
}

func TestEmitter_WithItems(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	items := []domain.Item{
		{Title: "[招标公告] 工程A", Link: "https://www.whzbtbxt.cn/#/cmsIndex?path=tendererNotice&type=detail&id=1",
			Published: time.Date(2024, 6, 14, 9, 0, 0, 0, loc), Description: "a", Category: domain.TenderNotice},
		{Title: "[中标结果] 工程B", Link: "https://www.whzbtbxt.cn/#/cmsIndex?path=winBidBulletin&type=detail&id=2",
			Published: time.Date(2024, 6, 13, 9, 0, 0, 0, loc), Description: "b", Category: domain.WinningBidResult},
	}
	collector := &mocks.CollectorMock{CollectFunc: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
		return items, nil
	}}

	e, path := newTestEmitter(t, collector)
	report, err := e.Emit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeItems, report.Outcome)
	assert.Equal(t, 2, report.Items)
	require.NoError(t, report.Err)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), report.StartedAt)

	require.Len(t, collector.CollectCalls(), 1)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), collector.CollectCalls()[0].Now)

	rss := readFeed(t, path)
	assert.Contains(t, rss, "<description>自动抓取武汉公共资源交易平台的招标公告、变更公告、中标结果等信息</description>")
	assert.Contains(t, rss, "<title>[招标公告] 工程A</title>")
	assert.Contains(t, rss, "<title>[中标结果] 工程B</title>")

	parsed, err := Verify([]byte(rss))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "[招标公告] 工程A", parsed.Items[0].Title)
}

func TestEmitter_Empty(t *testing.T) {
	collector := &mocks.CollectorMock{CollectFunc: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
		return nil, nil
	}}

	e, path := newTestEmitter(t, collector)
	report, err := e.Emit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmpty, report.Outcome)
	assert.Zero(t, report.Items)

	rss := readFeed(t, path)
	assert.Contains(t, rss, "<description>暂无最新招标信息</description>")
	assert.Contains(t, rss, "<title>武汉公共资源交易平台 - 招标信息</title>")
	assert.NotContains(t, rss, "<item>")
}

func TestEmitter_Failure(t *testing.T) {
	tests := []struct {
		name    string
		collect func(ctx context.Context, now time.Time) ([]domain.Item, error)
		errMsg  string
	}{
		{
			name: "collector error",
			collect: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
				return nil, errors.New("network down")
			},
			errMsg: "network down",
		},
		{
			name: "collector panic",
			collect: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
				panic("boom")
			},
			errMsg: "collector panic: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, path := newTestEmitter(t, &mocks.CollectorMock{CollectFunc: tt.collect})
			report, err := e.Emit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, OutcomeFailure, report.Outcome)
			require.Error(t, report.Err)
			assert.EqualError(t, report.Err, tt.errMsg)

			rss := readFeed(t, path)
			assert.Contains(t, rss, "<description>数据抓取暂时出现问题</description>")
			assert.NotContains(t, rss, "<item>")
		})
	}
}

func TestEmitter_CancelledContextStillWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	collector := &mocks.CollectorMock{CollectFunc: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
		return nil, ctx.Err()
	}}
	e, path := newTestEmitter(t, collector)
	report, err := e.Emit(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, report.Outcome)
	assert.ErrorIs(t, report.Err, context.Canceled)

	rss := readFeed(t, path)
	assert.Contains(t, rss, "数据抓取暂时出现问题")
}

func TestEmitter_WriteError(t *testing.T) {
	collector := &mocks.CollectorMock{CollectFunc: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
		return nil, nil
	}}
	output := &mocks.OutputMock{WriteFunc: func(ctx context.Context, data []byte) error {
		require.NoError(t, ctx.Err())
		return errors.New("disk full")
	}}

	e := NewEmitter(collector, output, testSettings)
	report, err := e.Emit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write feed: disk full")
	assert.Equal(t, OutcomeEmpty, report.Outcome)
	require.Len(t, output.WriteCalls(), 1)
	assert.Contains(t, string(output.WriteCalls()[0].Data), "暂无最新招标信息")
}

func TestEmitter_KeepOnCancel(t *testing.T) {
	cancelled := func() context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	collector := &mocks.CollectorMock{CollectFunc: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
		return nil, fmt.Errorf("collect items: %w", ctx.Err())
	}}

	t.Run("existing feed kept", func(t *testing.T) {
		e, path := newTestEmitter(t, collector)
		e.settings.KeepOnCancel = true
		require.NoError(t, os.WriteFile(path, []byte("previous feed"), 0o600))

		report, err := e.Emit(cancelled())
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailure, report.Outcome)
		assert.True(t, report.Kept)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "previous feed", string(data))
	})

	t.Run("no feed yet, placeholder written", func(t *testing.T) {
		e, path := newTestEmitter(t, collector)
		e.settings.KeepOnCancel = true

		report, err := e.Emit(cancelled())
		require.NoError(t, err)
		assert.False(t, report.Kept)
		assert.Contains(t, readFeed(t, path), "数据抓取暂时出现问题")
	})

	t.Run("collection error is not a cancel", func(t *testing.T) {
		output := &mocks.OutputMock{
			ExistsFunc: func() bool { return true },
			WriteFunc:  func(ctx context.Context, data []byte) error { return nil },
		}
		failing := &mocks.CollectorMock{CollectFunc: func(ctx context.Context, now time.Time) ([]domain.Item, error) {
			return nil, errors.New("network down")
		}}
		e := NewEmitter(failing, output, Settings{Title: "t", KeepOnCancel: true})

		report, err := e.Emit(context.Background())
		require.NoError(t, err)
		assert.False(t, report.Kept)
		assert.Empty(t, output.ExistsCalls())
		require.Len(t, output.WriteCalls(), 1)
	})

	t.Run("disabled in once mode", func(t *testing.T) {
		e, path := newTestEmitter(t, collector)
		require.NoError(t, os.WriteFile(path, []byte("previous feed"), 0o600))

		report, err := e.Emit(cancelled())
		require.NoError(t, err)
		assert.False(t, report.Kept)
		assert.Contains(t, readFeed(t, path), "数据抓取暂时出现问题")
	})
}
