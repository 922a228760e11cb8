// Package hcl provides the concrete HCL implementation for the build file
// loading and step decoding interfaces defined in the `config` package.
// It is responsible for file parsing, staged evaluation of the top-level
// blocks (variables, project, directories, tasks) and CTY-to-Go data
// binding of step bodies.
package hcl
