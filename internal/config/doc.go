// Package config loads the practice tracker client configuration.
//
// # Resolution Order
//
// Values are resolved with spf13/viper, lowest precedence first:
//
//  1. Built-in defaults
//  2. ~/.config/practice-tracker/config.toml (or the --config path)
//  3. PRACTICE_* environment variables (PRACTICE_BASE_URL, PRACTICE_POLL, ...)
//  4. Command-line flags bound through LoadOptions.Flags
//
// A missing config file is not an error; the client works against
// http://127.0.0.1:8000 out of the box.
//
// # TOML Format
//
//	base_url = "https://practice.example"
//	cookie_name = "pt_session"
//	request_timeout = "10s"   # zero or absent: bounded by the caller's context only
//	poll = 60                 # seconds between background reloads, 0 disables
//	log_level = "info"
//	log_path = "~/.local/state/practice-tracker/practice-tracker.log"
//
// Paths support tilde expansion and are returned absolute.
//
// # No Global State
//
// Load uses its own viper instance and returns a Config value. Callers pass
// that value to the API client and UI explicitly; nothing reads the
// environment after start-up.
package config
