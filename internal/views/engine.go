package views

import (
	"slices"

	"tracer/internal/findings"
)

// AllStandards is the sentinel filter value that keeps every record. It is
// always the first entry returned by Standards.
const AllStandards = "All"

// Filter is the active dashboard selection.
type Filter struct {
	// Standard selects records whose standard field equals it exactly. Empty
	// and AllStandards both disable the filter.
	Standard string
	Dates    DateRange
}

func (f Filter) standard() string {
	if f.Standard == "" {
		return AllStandards
	}
	return f.Standard
}

// StatusCount is one slice of the status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DepartmentCount is one bar of the "Not Met" by department chart.
type DepartmentCount struct {
	Department string `json:"department"`
	NotMet     int    `json:"not_met"`
}

// Totals backs the summary tiles.
type Totals struct {
	Total     int `json:"total"`
	NotMet    int `json:"not_met"`
	MetOrNA   int `json:"met_or_na"`
	Standards int `json:"standards"`
}

// Bundle is every derived view for one filter state.
type Bundle struct {
	Filter      Filter            `json:"-"`
	Records     []findings.Record `json:"-"`
	Standards   []string          `json:"standards"`
	Statuses    []StatusCount     `json:"statuses"`
	Departments []DepartmentCount `json:"departments"`
	Totals      Totals            `json:"totals"`
}

// StatusMap returns the status breakdown keyed by status.
func (b Bundle) StatusMap() map[string]int {
	out := make(map[string]int, len(b.Statuses))
	for _, sc := range b.Statuses {
		out[sc.Status] = sc.Count
	}
	return out
}

// Engine derives views using a fixed set of well-known field names.
type Engine struct {
	fields findings.Fields
}

// New returns an engine reading the given fields; blank names use defaults.
func New(fields findings.Fields) *Engine {
	return &Engine{fields: fields.WithDefaults()}
}

// Fields returns the field names the engine reads.
func (e *Engine) Fields() findings.Fields {
	return e.fields
}

// Standards lists the selectable standards: AllStandards first, then every
// distinct non-empty standard in first-seen order.
func (e *Engine) Standards(records []findings.Record) []string {
	out := []string{AllStandards}
	seen := make(map[string]struct{})
	for _, r := range records {
		v := r.Get(e.fields.Standard)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Apply returns the records matching filter, preserving their relative order.
func (e *Engine) Apply(records []findings.Record, filter Filter) []findings.Record {
	standard := filter.standard()
	out := make([]findings.Record, 0, len(records))
	for _, r := range records {
		if standard != AllStandards && r.Get(e.fields.Standard) != standard {
			continue
		}
		if filter.Dates.Active() {
			d, ok := ParseDate(r.Get(e.fields.Date))
			if !ok || !filter.Dates.Contains(d) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Derive filters records and computes every aggregate over the result.
func (e *Engine) Derive(records []findings.Record, filter Filter) Bundle {
	filtered := e.Apply(records, filter)
	standards := e.Standards(records)
	notMet := e.countNotMet(filtered)
	return Bundle{
		Filter:      filter,
		Records:     filtered,
		Standards:   standards,
		Statuses:    e.StatusCounts(filtered),
		Departments: e.DepartmentNotMet(filtered),
		Totals: Totals{
			Total:     len(filtered),
			NotMet:    notMet,
			MetOrNA:   len(filtered) - notMet,
			Standards: len(standards) - 1,
		},
	}
}

// StatusCounts groups records by status in first-encounter order. An empty
// status is counted as N/A.
func (e *Engine) StatusCounts(records []findings.Record) []StatusCount {
	var out []StatusCount
	index := make(map[string]int)
	for _, r := range records {
		status := r.Get(e.fields.Status)
		if status == "" {
			status = findings.StatusNA
		}
		i, ok := index[status]
		if !ok {
			i = len(out)
			index[status] = i
			out = append(out, StatusCount{Status: status})
		}
		out[i].Count++
	}
	return out
}

// DepartmentNotMet counts "Not Met" findings per department, highest first.
// Ties keep first-encounter order.
func (e *Engine) DepartmentNotMet(records []findings.Record) []DepartmentCount {
	var out []DepartmentCount
	index := make(map[string]int)
	for _, r := range records {
		if r.Get(e.fields.Status) != findings.StatusNotMet {
			continue
		}
		dept := r.Get(e.fields.Department)
		if dept == "" {
			dept = findings.UnknownDepartment
		}
		i, ok := index[dept]
		if !ok {
			i = len(out)
			index[dept] = i
			out = append(out, DepartmentCount{Department: dept})
		}
		out[i].NotMet++
	}
	slices.SortStableFunc(out, func(a, b DepartmentCount) int {
		return b.NotMet - a.NotMet
	})
	return out
}

func (e *Engine) countNotMet(records []findings.Record) int {
	n := 0
	for _, r := range records {
		if r.Get(e.fields.Status) == findings.StatusNotMet {
			n++
		}
	}
	return n
}
