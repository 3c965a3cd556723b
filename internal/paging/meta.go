package paging

// Meta summarizes what a Pager has loaded so far.
type Meta struct {
	PagesLoaded int  `json:"pages_loaded" yaml:"pages_loaded"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	LoadedItems int  `json:"loaded_items" yaml:"loaded_items"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewMeta builds metadata from the page size, the loaded count and the total
// reported by the source. A negative total means the source did not report one.
func NewMeta(pageSize, pagesLoaded, loaded, total int, hasNext bool) Meta {
	if total < loaded {
		total = loaded
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	if totalPages < pagesLoaded {
		totalPages = pagesLoaded
	}

	return Meta{
		PagesLoaded: pagesLoaded,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  total,
		LoadedItems: loaded,
		HasNext:     hasNext,
	}
}
