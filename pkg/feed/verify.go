package feed

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// Verify parses a rendered feed back and checks it is a titled RSS document
func Verify(data []byte) (*gofeed.Feed, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if parsed.FeedType != "rss" {
		return nil, fmt.Errorf("unexpected feed type %q", parsed.FeedType)
	}
	if parsed.Title == "" {
		return nil, errors.New("feed has no title")
	}
	return parsed, nil
}
