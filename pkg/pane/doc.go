// Package pane defines pane types and the data carried by placed panes.
//
// A pane type is described by a Descriptor: a namespaced identifier, a
// default footprint, a data Schema, a factory for default data, and an
// ordered list of FieldDescriptors binding schema keys to editable inputs.
// Descriptors are checked when they are registered; a field whose input
// kind cannot produce the schema's value type is a RegistrationError.
//
// Pane instances are plain types.PaneInstance values. Create builds one
// from a descriptor, SetField edits one field without validation, and
// Registry.Validate checks an instance against its type's schema before it
// is persisted.
package pane
