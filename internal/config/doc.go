// Package config provides configuration loading and validation for the
// voice note client. It handles YAML-based configuration with struct
// validation covering the backend API, the analysis service, audio
// normalization targets, capture limits, the ops listener, and logging.
package config
