package feed

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/airtime-feed/backend/internal/models"
)

var builtinDefaults = []models.Video{
	{ID: "default-intro", URL: "/videos/intro.mp4"},
	{ID: "default-promo", URL: "/videos/promo.mp4"},
}

// DefaultVideos returns a copy of the built-in fallback list.
func DefaultVideos() []models.Video {
	return append([]models.Video(nil), builtinDefaults...)
}

type defaultsFile struct {
	Videos []struct {
		ID       string  `yaml:"id"`
		URL      string  `yaml:"url"`
		Duration float64 `yaml:"duration"`
	} `yaml:"videos"`
}

// LoadDefaults reads a fallback list from a YAML file:
//
//	videos:
//	  - url: /videos/intro.mp4
//	  - id: promo
//	    url: /videos/promo.mp4
//
// Entries never carry a schedule.
func LoadDefaults(path string) ([]models.Video, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}
	var f defaultsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	if len(f.Videos) == 0 {
		return nil, fmt.Errorf("decode defaults: no videos in %s", path)
	}
	out := make([]models.Video, 0, len(f.Videos))
	for i, v := range f.Videos {
		if v.URL == "" {
			return nil, fmt.Errorf("decode defaults: entry %d has no url", i)
		}
		id := v.ID
		if id == "" {
			id = "default-" + strconv.Itoa(i+1)
		}
		out = append(out, models.Video{ID: id, URL: v.URL, Duration: v.Duration})
	}
	return out, nil
}
