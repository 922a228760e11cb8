// Package registry provides the central "glue" for the step system.
//
// The Registry maps the step kinds used in build files (e.g. `step "minify"`)
// to the compiled Go functions and input types that implement them. Every
// module under `modules/` registers one or more kinds. At startup the build
// model is validated against the registry so that a typo in a build file is
// reported before anything runs.
package registry
