package model

import (
	"strconv"
	"time"
)

// DefaultRows and DefaultColumns describe the standard 10×10 hall used
// when a cinema is created without an explicit layout.
var DefaultRows = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

const DefaultColumns = 10

// deluxeRows is the number of trailing rows sold at the Deluxe tier.
const deluxeRows = 3

// Cinema represents a venue.  Its seat template is generated once in
// NewCinema and never mutated afterwards; Template returns a copy.
//
// Fields:
//
//	ID          – identifier assigned by the cinema repository.
//	Name        – display name (not unique).
//	Description – free text.
//	Capacity    – advertised seating capacity.
//	Has3D       – whether the venue can screen 3D.
//	Rows        – row labels of the layout in order.
//	Columns     – seats per row.
//	MovieIDs    – movies currently attached to the venue.
//	CreatedAt   – creation timestamp.
type Cinema struct {
	ID          uint64
	Name        string
	Description string
	Capacity    int
	Has3D       bool
	Rows        []string
	Columns     int
	MovieIDs    []uint64
	CreatedAt   time.Time

	template []TemplateSeat
	index    map[string]int
}

// NewCinema constructs a cinema and derives its seat template.  A nil
// rows slice selects the default layout; capacity defaults to the number
// of template seats when not positive.
func NewCinema(name, description string, capacity int, has3D bool, rows []string, columns int) *Cinema {
	if rows == nil {
		rows = DefaultRows
		if columns == 0 {
			columns = DefaultColumns
		}
	}
	rows = append([]string(nil), rows...)
	tpl := GenerateSeatTemplate(rows, columns)
	if capacity <= 0 {
		capacity = len(tpl)
	}
	idx := make(map[string]int, len(tpl))
	for i, s := range tpl {
		idx[s.Label] = i
	}
	return &Cinema{
		Name:        name,
		Description: description,
		Capacity:    capacity,
		Has3D:       has3D,
		Rows:        rows,
		Columns:     columns,
		CreatedAt:   time.Now().UTC(),
		template:    tpl,
		index:       idx,
	}
}

// GenerateSeatTemplate produces one seat per (row, column) in row-major
// order.  The last three rows are Deluxe and the rest Standard.
func GenerateSeatTemplate(rows []string, columns int) []TemplateSeat {
	if len(rows) == 0 || columns <= 0 {
		return []TemplateSeat{}
	}
	out := make([]TemplateSeat, 0, len(rows)*columns)
	for i, row := range rows {
		tier := TierStandard
		if i >= len(rows)-deluxeRows {
			tier = TierDeluxe
		}
		for col := 1; col <= columns; col++ {
			out = append(out, TemplateSeat{
				Label:  row + strconv.Itoa(col),
				Row:    row,
				Column: col,
				Tier:   tier,
			})
		}
	}
	return out
}

// Template returns a copy of the seat template.
func (c *Cinema) Template() []TemplateSeat {
	return append([]TemplateSeat{}, c.template...)
}

// TemplateSeat looks up a template seat by label.
func (c *Cinema) TemplateSeat(label string) (TemplateSeat, bool) {
	i, ok := c.index[label]
	if !ok {
		return TemplateSeat{}, false
	}
	return c.template[i], true
}

// Clone returns a copy that shares the immutable template but not the
// mutable movie list.
func (c *Cinema) Clone() *Cinema {
	cp := *c
	cp.MovieIDs = append([]uint64(nil), c.MovieIDs...)
	return &cp
}

// DisplayName appends a 3D marker to the name when supported.
func (c *Cinema) DisplayName() string {
	if c.Has3D {
		return c.Name + " (3D)"
	}
	return c.Name
}
