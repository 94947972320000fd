package findings

import "strconv"

// Columns is the parsed header row shared by every record of a dataset.
type Columns struct {
	names []string
	index map[string]int
}

// NewColumns builds a header from raw names. Empty names are replaced with
// column_<index>; when a name repeats, lookups resolve to the last occurrence.
func NewColumns(names ...string) *Columns {
	cols := &Columns{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if name == "" {
			name = placeholderName(i)
		}
		cols.names[i] = name
		cols.index[name] = i
	}
	return cols
}

func placeholderName(index int) string {
	return "column_" + strconv.Itoa(index)
}

// Names returns a copy of the header names in source order.
func (c *Columns) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len reports the number of header columns.
func (c *Columns) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Index returns the position of name in the header.
func (c *Columns) Index(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.index[name]
	return i, ok
}

// Record is one parsed data row. The zero value is a valid empty record.
type Record struct {
	cols   *Columns
	values []string
}

// NewRecord zips values against cols. Missing trailing values become empty
// strings and surplus values are dropped, so the record always has exactly
// cols.Len() fields.
func NewRecord(cols *Columns, values ...string) Record {
	n := cols.Len()
	out := make([]string, n)
	copy(out, values)
	return Record{cols: cols, values: out}
}

// Get returns the value of the named field, or "" when the field is absent.
func (r Record) Get(name string) string {
	i, ok := r.cols.Index(name)
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// Len reports how many fields the record carries.
func (r Record) Len() int {
	return len(r.values)
}

// Columns returns the header names the record was parsed against.
func (r Record) Columns() []string {
	return r.cols.Names()
}

// Values returns a copy of the field values in header order.
func (r Record) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Map returns the record as a name to value map. Duplicate header names keep
// the last value, matching Get.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	if r.cols == nil {
		return out
	}
	for i, name := range r.cols.names {
		if i < len(r.values) {
			out[name] = r.values[i]
		}
	}
	return out
}

// Dataset is the result of a successful load: the header plus every data row
// in source order.
type Dataset struct {
	Columns *Columns
	Records []Record
}

// Len reports the number of data rows.
func (d Dataset) Len() int {
	return len(d.Records)
}
