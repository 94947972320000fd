// Package findings turns a compliance-tracer CSV export into an ordered
// sequence of immutable records.
//
// The parser is deliberately forgiving: malformed rows degrade to partial
// records, missing values read back as empty strings, and only an input that
// cannot yield a header plus at least one data row is reported as unreadable.
// Load distinguishes the two unreadable outcomes (no header, no rows); Parse
// keeps the merged "empty result means failure" contract for callers that only
// need a boolean signal.
//
// Records share a single Columns value so lookups by field name are map hits
// rather than linear scans. Fields names the handful of columns the rest of
// the system treats specially (status, department, standard, tracer date).
package findings
