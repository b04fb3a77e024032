// Package commands implements the character-browser command line. Every
// subcommand drives the same view the interactive browse mode uses and
// prints the resulting document as text or HTML.
package commands
