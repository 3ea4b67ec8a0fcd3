// Package config loads runtime configuration for the Rycus client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables (RYCUS_API_BASE_URL, RYCUS_DB_PATH,
//     RYCUS_DEV_MODE, RYCUS_VIP_EMAILS).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the backend API
//	-db string    path to the local database file
//	-i int        notification poll interval (seconds)
//	-dev          development mode: bypass the billing gate
//	-vip string   comma-separated allow-listed owner emails
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "12s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.rycus.example.com",
//	  "db_path": "rycus.db",
//	  "poll_interval": "12s",
//	  "dev_mode": false,
//	  "vip_emails": ["owner@rycus.example.com"]
//	}
package config
