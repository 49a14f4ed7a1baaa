// Package config defines the configuration model for the favicon pipeline.
package config
