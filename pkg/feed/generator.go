package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/umputun/bidfeed/pkg/domain"
)

// Generator renders RSS 2.0 documents
type Generator struct {
	name string // generator element value
}

// NewGenerator creates a new feed generator, name goes to the generator element
func NewGenerator(name string) *Generator {
	return &Generator{name: name}
}

// Generate renders doc as RSS 2.0 with an XML declaration, indented if pretty is set
func (g *Generator) Generate(doc Document, pretty bool) ([]byte, error) {
	rssItems := make([]*RSSItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		rssItems = append(rssItems, g.convertToRSSItem(item))
	}

	channel := &RSSChannel{
		Title:         doc.Title,
		Link:          doc.Link,
		Description:   doc.Description,
		Language:      doc.Language,
		LastBuildDate: g.buildTime(doc).Format(time.RFC1123Z),
		Generator:     g.name,
		Items:         rssItems,
	}
	if doc.SelfLink != "" {
		channel.AtomLink = &AtomLink{Href: doc.SelfLink, Rel: "self", Type: "application/rss+xml"}
	}

	feed := &RSS{Version: "2.0", Atom: "http://www.w3.org/2005/Atom", Channel: channel}

	var output []byte
	var err error
	if pretty {
		output, err = xml.MarshalIndent(feed, "", "  ")
	} else {
		output, err = xml.Marshal(feed)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal RSS: %w", err)
	}

	// add XML declaration
	return append([]byte(xml.Header), output...), nil
}

// buildTime returns the newest item time, or the document build time for empty feeds
func (g *Generator) buildTime(doc Document) time.Time {
	var res time.Time
	for _, item := range doc.Items {
		if item.Published.After(res) {
			res = item.Published
		}
	}
	if res.IsZero() {
		res = doc.BuildTime
	}
	if res.IsZero() {
		res = time.Now()
	}
	return res
}

// convertToRSSItem maps a normalized item to an RSS item, the link doubles as guid
func (g *Generator) convertToRSSItem(item domain.Item) *RSSItem {
	return &RSSItem{
		Title:       item.Title,
		Link:        item.Link,
		GUID:        &GUID{IsPermaLink: true, Value: item.Link},
		Description: item.Description,
		PubDate:     item.Published.Format(time.RFC1123Z),
		Categories:  []string{item.Category.Label()},
	}
}
