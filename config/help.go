package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Driver dispatch service.

Usage:
  dispatch [flags]

Flags:
  -config-path string   Path to the config yaml file (default "config.yaml")
  -help                 Show this message

Configuration is read from the yaml file and overridden by environment
variables (DATABASE_*, REDIS_*, RABBITMQ_*, HTTP_PORT, AUTH_JWT_SECRET,
DISPATCH_*).
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the effective configuration. Secrets are omitted.
func PrintConfig(cfg *Config) {
	fmt.Printf("database: %s:%s/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("redis: %s db=%d\n", cfg.Redis.GetAddr(), cfg.Redis.DB)
	fmt.Printf("rabbitmq: %s:%s\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Printf("http port: %s\n", cfg.HTTP.Port)
	fmt.Printf("socket server: %s\n", cfg.Dispatch.SocketServerURL)
	fmt.Printf("availability mode: %s\n", cfg.Dispatch.AvailabilityMode)
}
