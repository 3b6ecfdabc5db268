// Package config holds emissary's runtime configuration.
//
// Values are layered: NewConfig defaults, then the YAML file (.emissary in
// the working directory or home directory, or an explicit path), then
// EMISSARY_* environment variables, then command-line flags applied by the
// caller. Validate is called once after all layers are applied.
package config
