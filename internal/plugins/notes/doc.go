// Package notes is the checklist plugin. At construction it parses every
// markdown file under notes_directory into a checklist.Document; each frame
// it publishes one overlay panel per document and applies the toggles,
// deletions and new items the user reported; on close it rewrites every
// document in canonical form. Documents live only in memory between
// construction and close, so killing the process before close loses edits.
package notes
