// Package config loads the optional .datafile-test.yaml file and overlays it
// on the generator configuration. Command-line flags are applied after it.
package config
