// Package cli turns the gridbuild command line into an app.Config: the
// build file path, targets, -var overrides and runner options. Usage and
// validation problems are returned as an ExitError carrying exit code 2.
package cli
