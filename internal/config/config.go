package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from the environment.
type Config struct {
	Addr          string        `envconfig:"ADDR" default:":8080"`
	DBPath        string        `envconfig:"DB_PATH" default:"blog.db"`
	TemplateDir   string        `envconfig:"TEMPLATE_DIR" default:"web/templates"`
	PostPageCount int           `envconfig:"POST_PAGE_COUNT" default:"10"`
	FeedCacheTTL  time.Duration `envconfig:"FEED_CACHE_TTL" default:"20s"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if c.PostPageCount <= 0 {
		return Config{}, fmt.Errorf("POST_PAGE_COUNT must be positive, got %d", c.PostPageCount)
	}
	return c, nil
}
