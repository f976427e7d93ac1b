package assemble

// Layout is the shape of one appendix page.
type Layout struct {
	Columns     int
	RowsPerPage int
}

// DefaultLayout is four columns by five rows, twenty codes per page.
func DefaultLayout() Layout {
	return Layout{Columns: 4, RowsPerPage: 5}
}

// ItemsPerPage returns how many cells one page holds.
func (l Layout) ItemsPerPage() int {
	return l.Columns * l.RowsPerPage
}

// Cell is one grid position. A zero QrID marks a padding cell.
type Cell struct {
	QrID int
}

// Empty reports whether the cell is padding.
func (c Cell) Empty() bool { return c.QrID == 0 }

// Page is one chunk of the appendix grid.
type Page struct {
	Rows [][]Cell
}

// Paginate buckets ids, in the given order, into pages of l.ItemsPerPage()
// and each page into rows of l.Columns cells. Only the last page may hold
// fewer items, and only the last row of a page may be partial; it is padded
// with empty cells so every row has exactly l.Columns cells.
//
// Paginate returns nil when ids is empty or the layout is not positive.
func Paginate(ids []int, l Layout) []Page {
	if len(ids) == 0 || l.Columns <= 0 || l.RowsPerPage <= 0 {
		return nil
	}

	perPage := l.ItemsPerPage()
	pages := make([]Page, 0, (len(ids)+perPage-1)/perPage)
	for start := 0; start < len(ids); start += perPage {
		chunk := ids[start:min(start+perPage, len(ids))]

		rows := make([][]Cell, 0, (len(chunk)+l.Columns-1)/l.Columns)
		for r := 0; r < len(chunk); r += l.Columns {
			row := make([]Cell, l.Columns)
			for c, id := range chunk[r:min(r+l.Columns, len(chunk))] {
				row[c] = Cell{QrID: id}
			}
			rows = append(rows, row)
		}
		pages = append(pages, Page{Rows: rows})
	}
	return pages
}
