// Package config manages user-level settings stored at ~/.bio/config.yaml.
// Keys can be overridden with BIO_* environment variables; the registry URL,
// self-update mirror and log level are read from here.
package config
