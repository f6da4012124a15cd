package view

import "choreboard/internal/model"

// Page is the visible slice of a processed collection.
type Page struct {
	Items      []model.Task `json:"items"`
	TotalPages int          `json:"totalPages"`
}

// TotalPages is ceil(count/pageSize), never below 1: an empty collection
// still has one (empty) page.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	n := (count + pageSize - 1) / pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// ClampPage folds an out-of-range page number back into [1, totalPages].
// An out-of-range page is self-healing state, not an error: left alone it
// would silently render an empty view.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func Paginate(tasks []model.Task, pageSize, page int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	total := TotalPages(len(tasks), pageSize)
	page = ClampPage(page, total)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(tasks) {
		start = len(tasks)
	}
	if end > len(tasks) {
		end = len(tasks)
	}

	items := make([]model.Task, end-start)
	copy(items, tasks[start:end])
	return Page{Items: items, TotalPages: total}
}
