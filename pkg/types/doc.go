// Package types defines the document entities, pane instance records, store
// interfaces, and standard error types for the Fundiary pane engine.
package types
