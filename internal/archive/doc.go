// Package archive keeps generated analysis reports in a local SQLite file so
// they can be listed, reopened, and removed later.
//
// Schema files under migrations/ are numbered and applied in order on Open;
// the database's user_version records the last one applied. Writes retry
// briefly while another process holds the lock.
package archive
