package common

import (
	"github.com/dtnitsch/dats-exporter/models"
	"github.com/urfave/cli/v2"
)

// ApplyConfigFlags overrides config file values with flags the user set.
func ApplyConfigFlags(c *cli.Context, cfg *models.Config) {
	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
	}
	if c.IsSet("out-dir") {
		cfg.OutDir = c.String("out-dir")
	}
	if c.IsSet("encoding") {
		cfg.Encoding = c.String("encoding")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
}
