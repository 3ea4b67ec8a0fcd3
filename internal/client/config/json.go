package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rycusapp/rycus-cli/internal/flagx"
	"github.com/rycusapp/rycus-cli/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "12s"
// or as integer nanoseconds. After parsing, set values are copied into the
// runtime Config.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	DBPath         string         `json:"db_path"`
	PollInterval   timex.Duration `json:"poll_interval"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DevMode        *bool          `json:"dev_mode"`
	VIPEmails      []string       `json:"vip_emails"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flags. When no file is given the function returns
// silently; a file that cannot be read or parsed panics (callers may recover).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.DevMode != nil {
		cfg.DevMode = *jc.DevMode
	}
	if len(jc.VIPEmails) > 0 {
		cfg.VIPEmails = splitEmails(strings.Join(jc.VIPEmails, ","))
	}
}
