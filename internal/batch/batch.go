// Package batch loads simulation scenario files for `sortdl simulate`.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Scenario struct {
	Version   int        `yaml:"version"`
	Downloads []Download `yaml:"downloads"`
}

// Download is one scripted download event pair: a determining event built
// from url/filename, then a completion at saved_to (or the suggested path
// when saved_to is empty).
type Download struct {
	ID       string `yaml:"id"`
	URL      string `yaml:"url"`
	FinalURL string `yaml:"final_url"`
	Referrer string `yaml:"referrer"`
	Filename string `yaml:"filename"`
	SavedTo  string `yaml:"saved_to"`
	Size     int64  `yaml:"size"`
	// Respond answers any learning proposal this download raises:
	// accept | reject | decline | none
	Respond string `yaml:"respond"`
}

func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version: %d", s.Version)
	}
	if len(s.Downloads) == 0 {
		return nil, fmt.Errorf("scenario has no downloads")
	}
	for i, d := range s.Downloads {
		if d.Filename == "" {
			return nil, fmt.Errorf("downloads[%d]: filename required", i)
		}
		if d.URL == "" && d.FinalURL == "" && d.Referrer == "" {
			return nil, fmt.Errorf("downloads[%d]: url, final_url, or referrer required", i)
		}
		switch d.Respond {
		case "", "accept", "reject", "decline", "none":
			// ok
		default:
			return nil, fmt.Errorf("downloads[%d]: invalid respond: %s", i, d.Respond)
		}
	}
	return &s, nil
}
