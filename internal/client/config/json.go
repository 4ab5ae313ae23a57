package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/plaquekeeper/internal/flagx"
)

// parseJson overlays cfg with the JSON file named by -c or -config. Keys
// missing from the file keep their current value. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		panic(err)
	}
}
