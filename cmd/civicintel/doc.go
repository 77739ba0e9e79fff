// Package main hosts the civicintel CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration resolution, structured
// logging, and the meeting store into the pipeline runner and the Legistar
// inspection commands. Heavy lifting lives in the internal packages; this
// package stays declarative and surfaces their behavior through commands
// and flags.
package main
