package domain

import "fmt"

// Category is one of the fixed announcement types published by the trading platform
type Category int

// supported categories, in fetch order
const (
	TenderNotice Category = iota
	AmendmentNotice
	WinningBidResult
	Prequalification
)

// categoryInfo is a row of the static category table
type categoryInfo struct {
	label   string // human-readable label used in titles and feed categories
	apiPath string // relative path of the list endpoint
	segment string // path fragment used in detail links
}

var categoryTable = map[Category]categoryInfo{
	TenderNotice:     {label: "招标公告", apiPath: "/whebd-server/tendererNotice/list", segment: "tendererNotice"},
	AmendmentNotice:  {label: "变更公告", apiPath: "/whebd-server/amendBulletin/list", segment: "amendBulletin"},
	WinningBidResult: {label: "中标结果", apiPath: "/whebd-server/winBidBulletin/list", segment: "winBidBulletin"},
	Prequalification: {label: "资格预审", apiPath: "/whebd-server/prequalification/list", segment: "prequalification"},
}

// Categories returns all categories in fetch order
func Categories() []Category {
	return []Category{TenderNotice, AmendmentNotice, WinningBidResult, Prequalification}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label returns the display label, e.g. 招标公告
func (c Category) Label() string {
	return categoryTable[c].label
}

// APIPath returns the relative path of the category list endpoint
func (c Category) APIPath() string {
	return categoryTable[c].apiPath
}

// Segment returns the path fragment used to build detail links
func (c Category) Segment() string {
	return categoryTable[c].segment
}

// Tag returns the bracketed label prepended to item titles
func (c Category) Tag() string {
	return "[" + c.Label() + "]"
}

// String implements fmt.Stringer
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return c.Label()
}
