package findings

// Status values with special meaning in tracer exports.
const (
	StatusMet    = "Met"
	StatusNotMet = "Not Met"
	StatusNA     = "N/A"
)

// UnknownDepartment groups findings whose department field is empty.
const UnknownDepartment = "Unknown"

// Fields names the columns the view engine and the assistant read.
type Fields struct {
	Status        string
	Department    string
	Standard      string
	Date          string
	Finding       string
	FindingDetail string
	Improvement   string
	ID            string
}

// DefaultFields returns the column names used by the hospital tracer export.
// "Type of Improvment" is spelled the way the export spells it.
func DefaultFields() Fields {
	return Fields{
		Status:        "Status",
		Department:    "Department",
		Standard:      "Standard",
		Date:          "Date Tracer",
		Finding:       "Finding",
		FindingDetail: "Finding detail",
		Improvement:   "Type of Improvment",
		ID:            "IQA_ID",
	}
}

// WithDefaults fills every empty name from DefaultFields.
func (f Fields) WithDefaults() Fields {
	d := DefaultFields()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&f.Status, d.Status)
	fill(&f.Department, d.Department)
	fill(&f.Standard, d.Standard)
	fill(&f.Date, d.Date)
	fill(&f.Finding, d.Finding)
	fill(&f.FindingDetail, d.FindingDetail)
	fill(&f.Improvement, d.Improvement)
	fill(&f.ID, d.ID)
	return f
}

// Detail returns the finding detail, falling back to the short finding text.
func (f Fields) Detail(r Record) string {
	if v := r.Get(f.FindingDetail); v != "" {
		return v
	}
	return r.Get(f.Finding)
}
