// Package config provides configuration management for visamcp.
//
// Configuration is loaded from multiple sources and merged in a specific
// order, with later sources overriding earlier ones:
//
//  1. Built-in defaults (sandbox environment, stdio transport).
//  2. User configuration (~/.config/visamcp/config.yaml).
//  3. Project configuration (./.visamcp/config.yaml).
//  4. Environment variables (VISA_USER_ID, VISA_PASSWORD, VISA_CERT_PATH,
//     VISA_KEY_PATH, VISA_CA_PATH, VISA_ENV, VISA_BASE_URL).
//
// The resulting Config is validated once at startup and treated as immutable
// for the lifetime of the process.
package config
