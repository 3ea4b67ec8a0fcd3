package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rycusapp/rycus-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     base URL of the backend API (default from Config)
//	-db string    path to the local database file
//	-i int        notification poll interval in seconds
//	-dev          enable the development billing bypass
//	-vip string   comma-separated allow-listed owner emails
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-db", "-i", "-dev", "-vip"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the local database file")
	pollSeconds := fs.Int("i", int(cfg.PollInterval.Seconds()), "notification poll interval (in seconds)")
	fs.BoolVar(&cfg.DevMode, "dev", cfg.DevMode, "development mode: bypass the billing gate")
	vip := fs.String("vip", strings.Join(cfg.VIPEmails, ","), "comma-separated VIP emails")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollSeconds) * time.Second
	cfg.VIPEmails = splitEmails(*vip)
}

// parseEnv overlays Config with values from environment variables. Only the
// variables that are set override anything.
func parseEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RYCUS_API_BASE_URL")); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("RYCUS_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("RYCUS_DEV_MODE")); v == "1" || strings.EqualFold(v, "true") {
		cfg.DevMode = true
	}
	if v := strings.TrimSpace(os.Getenv("RYCUS_VIP_EMAILS")); v != "" {
		cfg.VIPEmails = splitEmails(v)
	}
}

func splitEmails(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
