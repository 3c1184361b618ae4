// Package config loads docket's CUE configuration file.
//
// A configuration file is unified with the embedded #Config schema, which
// supplies defaults and rejects unknown fields, then decoded into Config.
package config
