package table

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (p Pagination) PageCount(total int) int {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// Bounds returns the slice bounds of the current page, empty when the page is past the end.
func (p Pagination) Bounds(total int) (int, int) {
	if p.Size <= 0 || p.Page < 0 {
		return 0, 0
	}
	start := min(p.Page*p.Size, total)
	end := min(start+p.Size, total)
	return start, end
}

func Paginate[T any](items []T, p Pagination) []T {
	start, end := p.Bounds(len(items))
	return items[start:end]
}
