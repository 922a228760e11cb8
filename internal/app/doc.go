// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: load the
// build files, plan the requested targets and run them, decoupled from any
// specific entrypoint like a CLI.
package app
