package findings

// DefaultChatContextRows bounds how many records are projected into a chat
// system instruction.
const DefaultChatContextRows = 50

// ChatRow is the reduced view of a record handed to the chat assistant.
type ChatRow struct {
	Department string `json:"Department"`
	Standard   string `json:"Standard"`
	Status     string `json:"Status"`
	Finding    string `json:"Finding"`
}

// AnalysisRow is the reduced view of a record handed to the narrative analyst.
type AnalysisRow struct {
	Department  string `json:"Department"`
	Standard    string `json:"Standard"`
	Status      string `json:"Status"`
	Finding     string `json:"Finding"`
	Improvement string `json:"Type of Improvement"`
}

// ChatContext projects the first limit records. A non-positive limit uses
// DefaultChatContextRows.
func ChatContext(records []Record, f Fields, limit int) []ChatRow {
	if limit <= 0 {
		limit = DefaultChatContextRows
	}
	if len(records) < limit {
		limit = len(records)
	}
	rows := make([]ChatRow, 0, limit)
	for _, r := range records[:limit] {
		rows = append(rows, ChatRow{
			Department: r.Get(f.Department),
			Standard:   r.Get(f.Standard),
			Status:     r.Get(f.Status),
			Finding:    f.Detail(r),
		})
	}
	return rows
}

// AnalysisContext projects every record for one-shot analysis.
func AnalysisContext(records []Record, f Fields) []AnalysisRow {
	rows := make([]AnalysisRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, AnalysisRow{
			Department:  r.Get(f.Department),
			Standard:    r.Get(f.Standard),
			Status:      r.Get(f.Status),
			Finding:     f.Detail(r),
			Improvement: r.Get(f.Improvement),
		})
	}
	return rows
}
