package vfs

import (
	"sort"
	"strings"
)

// Tab selects the dashboard tab scope.
type Tab string

const (
	TabAll     Tab = "all"
	TabStarred Tab = "starred"
	TabRecent  Tab = "recent"
)

// recentLimit caps the recent tab to the N most recently modified items.
const recentLimit = 10

// SortKey selects the column the view is ordered by.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByModified SortKey = "modified"
	SortBySize     SortKey = "size"
)

// SortDir is the sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Category filter sentinels. Any other value is matched against item
// CategoryID exactly.
const (
	CategoryAll     = "all"
	CategoryFolders = "folders"
)

// Query describes one rendering of the file list. Zero values mean: root
// folder, all tab, no filters, name ascending, first page with the default
// page size.
type Query struct {
	FolderID *string `json:"folder_id,omitempty"`
	Tab      Tab     `json:"tab,omitempty"`
	Category string  `json:"category,omitempty"`
	Types    []string `json:"types,omitempty"`
	Search   string  `json:"search,omitempty"`
	SortKey  SortKey `json:"sort_key,omitempty"`
	SortDir  SortDir `json:"sort_dir,omitempty"`
	Page     int     `json:"page,omitempty"`
	PageSize int     `json:"page_size,omitempty"`
}

// DefaultPageSize matches the dashboard's items-per-page default.
const DefaultPageSize = 10

// Page is one rendered page of the view plus the figures the pagination
// controls need.
type Page struct {
	Items     []*Item `json:"items"`
	Page      int     `json:"page"`
	PageCount int     `json:"page_count"`
	Total     int     `json:"total"`
}

// View runs the filter/sort/paginate pipeline over the current store
// contents. The stage order is fixed; reordering changes the result set.
// The recent-tab cap is applied after category/type/search filtering so a
// filtered view is never surprisingly short.
func (s *Store) View(q Query) Page {
	if q.Tab == "" {
		q.Tab = TabAll
	}
	if q.SortKey == "" {
		q.SortKey = SortByName
	}
	if q.SortDir == "" {
		q.SortDir = SortAsc
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	// Stage 1: scope to the active folder. Navigation is non-recursive;
	// items in subfolders stay invisible until navigated into.
	filtered := s.ChildrenOf(q.FolderID)

	// Stage 2: tab filter. The recent cap is deferred to stage 5b.
	if q.Tab == TabStarred {
		filtered = keep(filtered, func(i *Item) bool { return i.Starred })
	}

	// Stage 3: category filter.
	switch q.Category {
	case "", CategoryAll:
	case CategoryFolders:
		filtered = keep(filtered, func(i *Item) bool { return i.IsFolder() })
	default:
		filtered = keep(filtered, func(i *Item) bool {
			return i.CategoryID != nil && *i.CategoryID == q.Category
		})
	}

	// Stage 4: type filter, case-insensitive.
	if len(q.Types) > 0 {
		allowed := make(map[string]bool, len(q.Types))
		for _, t := range q.Types {
			allowed[strings.ToLower(strings.TrimSpace(t))] = true
		}
		filtered = keep(filtered, func(i *Item) bool {
			return allowed[strings.ToLower(string(i.Kind))]
		})
	}

	// Stage 5: search, case-insensitive substring on name.
	if query := strings.ToLower(strings.TrimSpace(q.Search)); query != "" {
		filtered = keep(filtered, func(i *Item) bool {
			return strings.Contains(strings.ToLower(i.Name), query)
		})
	}

	// Stage 5b: recent cap, after all other filters.
	if q.Tab == TabRecent {
		sort.SliceStable(filtered, func(a, b int) bool {
			return filtered[a].ModifiedAt.After(filtered[b].ModifiedAt)
		})
		if len(filtered) > recentLimit {
			filtered = filtered[:recentLimit]
		}
	}

	// Stage 6: sort.
	s.sortItems(filtered, q.SortKey, q.SortDir)

	// Stage 7: paginate. Page count is never below one; an out-of-range
	// page clamps into [1, pageCount].
	total := len(filtered)
	pageCount := (total + q.PageSize - 1) / q.PageSize
	if pageCount < 1 {
		pageCount = 1
	}
	page := q.Page
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:     filtered[start:end],
		Page:      page,
		PageCount: pageCount,
		Total:     total,
	}
}

func keep(items []*Item, pred func(*Item) bool) []*Item {
	out := items[:0]
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) sortItems(items []*Item, key SortKey, dir SortDir) {
	asc := dir != SortDesc

	less := func(a, b *Item) bool { return compareNames(a.Name, b.Name) < 0 }
	switch key {
	case SortByModified:
		less = func(a, b *Item) bool { return a.ModifiedAt.Before(b.ModifiedAt) }
	case SortBySize:
		counts := make(map[string]int)
		for _, item := range items {
			if item.IsFolder() {
				counts[item.ID] = s.ChildCount(item.ID)
			}
		}
		less = func(a, b *Item) bool { return compareSizes(a, b, counts) < 0 }
	}

	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

// compareSizes orders by size with the folder special cases: two folders
// compare by derived child count, and a folder always ranks before a file
// in ascending order regardless of byte sizes.
func compareSizes(a, b *Item, childCounts map[string]int) int {
	switch {
	case a.IsFolder() && b.IsFolder():
		return childCounts[a.ID] - childCounts[b.ID]
	case a.IsFolder():
		return -1
	case b.IsFolder():
		return 1
	default:
		switch {
		case a.ByteSize < b.ByteSize:
			return -1
		case a.ByteSize > b.ByteSize:
			return 1
		default:
			return 0
		}
	}
}

func compareNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return strings.Compare(la, lb)
	}
	return strings.Compare(a, b)
}
