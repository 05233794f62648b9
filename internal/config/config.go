package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIBaseURL = "http://localhost:8000"
	defaultFeedLimit  = 100
)

// Config holds runtime settings for the client.
type Config struct {
	APIBaseURL string
	DBPath     string
	FeedLimit  int
	Interweave bool
	RosterPath string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL: os.Getenv("POSTDECK_API_BASE_URL"),
		DBPath:     os.Getenv("POSTDECK_DB_PATH"),
		RosterPath: os.Getenv("POSTDECK_ROSTER_PATH"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "postdeck.db"
	}

	cfg.FeedLimit = defaultFeedLimit
	if raw := os.Getenv("POSTDECK_FEED_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return Config{}, fmt.Errorf("POSTDECK_FEED_LIMIT must be a positive integer: %q", raw)
		}
		cfg.FeedLimit = limit
	}

	if raw := os.Getenv("POSTDECK_INTERWEAVE"); raw != "" {
		interweave, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("POSTDECK_INTERWEAVE must be a boolean: %q", raw)
		}
		cfg.Interweave = interweave
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if strings.HasSuffix(c.APIBaseURL, "/") {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.FeedLimit < 1 {
		return fmt.Errorf("FeedLimit must be positive: %d", c.FeedLimit)
	}
	return nil
}

// SubOption is one sub-category the filter UI offers.
type SubOption struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Roster is the selectable sub-category list, loadable from a YAML file so
// it can track the server's fetch configuration.
type Roster struct {
	Subs []SubOption `yaml:"subs"`
}

// DefaultRoster mirrors the sub-categories the aggregator fetches when no
// roster file is configured.
func DefaultRoster() Roster {
	return Roster{Subs: []SubOption{
		{Label: "React.js", Value: "reactjs"},
		{Label: "Python", Value: "Python"},
		{Label: "ArtificialInteligence", Value: "ArtificialInteligence"},
		{Label: "ChatGPT Pro", Value: "ChatGPTPro"},
		{Label: "Local LLaMA", Value: "LocalLLaMA"},
	}}
}

// LoadRoster reads the YAML roster at path, falling back to the default
// roster when path is empty.
func LoadRoster(path string) (Roster, error) {
	if path == "" {
		return DefaultRoster(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("read roster file: %w", err)
	}
	var roster Roster
	if err := yaml.Unmarshal(raw, &roster); err != nil {
		return Roster{}, fmt.Errorf("parse roster file: %w", err)
	}
	if len(roster.Subs) == 0 {
		return DefaultRoster(), nil
	}
	for i := range roster.Subs {
		if roster.Subs[i].Label == "" {
			roster.Subs[i].Label = roster.Subs[i].Value
		}
	}
	return roster, nil
}
