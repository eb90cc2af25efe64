package watch

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Dir        string        `envconfig:"WATCH_DIR" default:"imports"`
	Pattern    string        `envconfig:"WATCH_PATTERN" default:"*.csv"`
	LoopPeriod time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
