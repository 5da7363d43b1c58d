package main

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jscyril/movix/internal/config"
	"github.com/jscyril/movix/internal/logging"
)

type commandContext struct {
	configFlag *string
	envFiles   []string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads .env files, then the config file, once per run
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.LoadEnv(c.envFiles...); err != nil {
			c.configErr = err
			return
		}

		path := config.GetConfigPath()
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.LoadOrCreate(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the file logger of the configured data directory
func (c *commandContext) newLogger(console bool) (*zap.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogPath(),
		Console: console,
	})
}
