// Package config defines the format-agnostic build model for the
// application, along with the core interfaces (Loader, Converter) for
// loading build files and decoding step bodies.
//
// The `config.Model` is the single source of truth for the `dag`,
// `executor` and step modules. It is built once at startup and never
// mutated afterwards. Concrete implementations of the interfaces, such as
// for HCL, are provided in separate packages.
package config
