package analyze

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	SnapshotPath string        `envconfig:"SNAPSHOT_PATH"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	OutputFormat string        `envconfig:"OUTPUT_FORMAT" default:"text"`
	ExportDir    string        `envconfig:"EXPORT_DIR"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
