// Package config manages user-level settings stored at ~/.imq/config.json.
// Values are read through viper so every key can be overridden by an IMQ_*
// environment variable; writes keep the JSON document's original key
// spelling so the file stays compatible with other IMQ tooling.
package config
