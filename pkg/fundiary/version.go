// Package fundiary holds module-level metadata for the Fundiary pane engine.
package fundiary

// Version is the release of the fundiary module and command.
const Version = "0.1.0"
