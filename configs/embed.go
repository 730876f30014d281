// Package configs provides the embedded configuration template for ragtime.
//
// The template is embedded at build time with go:embed so it ships with
// every distribution, whether installed from source or a binary release.
// 'ragtime init' writes it as .ragtime.yaml in the target directory.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration written by
// 'ragtime init'. Every value in it matches the hardcoded defaults in
// internal/config.
//
//go:embed ragtime.example.yaml
var ConfigTemplate string
