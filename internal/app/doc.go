// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the render loop that loads a graph
// description, compiles it and runs frames, decoupled from any specific
// entrypoint like a CLI.
package app
