package service

import (
	"context"

	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// DocumentPage is one index page. Rows partitions Items by the thumbnail column count.
type DocumentPage struct {
	Items       []model.Document   `json:"data"`
	Rows        [][]model.Document `json:"rows"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	NumPages    int                `json:"num_pages"`
	PageSize    int                `json:"page_size"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
	Tags        []string           `json:"tags,omitempty"`
}

type pageFetcher func(pq repository.PageQuery) (*repository.PageResult[model.Document], error)

// paginate loads the requested page. A page below 1 becomes 1 and a page past the end
// becomes the last one. An empty result still has one page.
func (s *documentService) paginate(ctx context.Context, page int, fetch pageFetcher) (*DocumentPage, error) {
	size := s.opts.ThumbRows * s.opts.ThumbColumns
	if page < 1 {
		page = 1
	}

	res, err := fetch(repository.PageQuery{Limit: size, Offset: (page - 1) * size})
	if err != nil {
		return nil, err
	}
	num := NumPages(res.Total, size)
	if page > num {
		page = num
		if res, err = fetch(repository.PageQuery{Limit: size, Offset: (page - 1) * size}); err != nil {
			return nil, err
		}
	}

	items := res.Items
	if items == nil {
		items = []model.Document{}
	}
	if len(items) > 0 {
		ids := make([]int64, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		tags, err := s.repos.Tags.ForDocuments(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].Tags = tags[items[i].ID]
		}
	}

	return &DocumentPage{
		Items:       items,
		Rows:        Partition(items, s.opts.ThumbColumns),
		Total:       res.Total,
		Page:        page,
		NumPages:    num,
		PageSize:    size,
		HasNext:     page < num,
		HasPrevious: page > 1,
	}, nil
}

// NumPages returns how many pages of size hold total items, at least one.
func NumPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Partition splits items into consecutive rows of n.
func Partition[T any](items []T, n int) [][]T {
	if n <= 0 {
		n = 1
	}
	rows := make([][]T, 0, (len(items)+n-1)/n)
	for i := 0; i < len(items); i += n {
		end := i + n
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, items[i:end])
	}
	return rows
}
