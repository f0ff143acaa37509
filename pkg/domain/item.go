package domain

import (
	"fmt"
	"strings"
	"time"
)

// Item is a normalized announcement ready for feed serialization
type Item struct {
	Title       string
	Link        string
	Published   time.Time
	Description string
	Category    Category
}

// Validate checks item invariants: non-empty title and link, set publish time, known category
func (i Item) Validate() error {
	switch {
	case strings.TrimSpace(i.Title) == "":
		return fmt.Errorf("empty title")
	case strings.TrimSpace(i.Link) == "":
		return fmt.Errorf("empty link")
	case i.Published.IsZero():
		return fmt.Errorf("zero publish time")
	case !i.Category.Valid():
		return fmt.Errorf("unknown category %d", int(i.Category))
	}
	return nil
}

// NoTitle is the project name used when a record has none
const NoTitle = "无标题"

// Title builds an item title prefixed with the category tag
func Title(c Category, name string) string {
	return c.Tag() + " " + name
}

// Summary builds the three-line item description: project name, raw publish date and category
func Summary(c Category, name, rawDate string) string {
	return fmt.Sprintf("项目名称: %s\n发布时间: %s\n类型: %s", name, rawDate, c.Label())
}

// ParseTime parses raw in the given layout and location; an empty or unparsable value
// yields fallback, so the returned time is never zero as long as fallback isn't
func ParseTime(raw, layout string, loc *time.Location, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(layout, raw, loc)
	if err != nil {
		return fallback
	}
	return ts
}
