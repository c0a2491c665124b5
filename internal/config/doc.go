// Package config manages user-level settings stored at ~/.qpmx/config.yaml.
// Values can be overridden with QPMX_* environment variables; the CLI reads
// its defaults for the hook (target directory, variant) and for the qbs
// integration (log level, colors, qbs executable, settings directory) here.
package config
