package util

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"
)

// Config is groupgate base configuration
type Config struct {
	Server     Server     `yaml:"server"`
	Authorizer Authorizer `yaml:"authorizer"`
}

type Server struct {
	Bind          string `yaml:"bind"`
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	EnableTrace   bool   `yaml:"enableTrace"`
}

type Authorizer struct {
	Issuer      string `yaml:"issuer"`
	Audience    string `yaml:"audience"`
	GroupsClaim string `yaml:"groupsClaim"`
	CacheTTL    int32  `yaml:"cacheTTL"` // seconds, group-policy record cache
}

// Load loads groupgate config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Fatal("failed to load configuration file:", err)
		return err
	}

	if c.Authorizer.GroupsClaim == "" {
		c.Authorizer.GroupsClaim = "cognito:groups"
	}
	if c.Authorizer.CacheTTL == 0 {
		c.Authorizer.CacheTTL = 300
	}

	return nil
}
