// Package config loads the two configuration layers of the bot: process
// environment (secrets, connection URLs) and the YAML bot configuration file
// (data sources, schedule, publishing switches). The YAML file is read once
// at startup and treated as immutable afterwards.
package config
