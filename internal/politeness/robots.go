package politeness

import (
	"fmt"

	"github.com/temoto/robotstxt"
)

// DefaultRobots keeps crawlers off the API while leaving the site indexable.
const DefaultRobots = "User-agent: *\nDisallow: /api/\n"

// RobotsPolicy is the site's own robots.txt, parsed once at startup so a
// broken file fails fast instead of being served.
type RobotsPolicy struct {
	raw  string
	data *robotstxt.RobotsData
}

// NewRobotsPolicy parses text; empty text means DefaultRobots.
func NewRobotsPolicy(text string) (*RobotsPolicy, error) {
	if text == "" {
		text = DefaultRobots
	}
	data, err := robotstxt.FromString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}
	return &RobotsPolicy{raw: text, data: data}, nil
}

// Text returns the policy as served.
func (p *RobotsPolicy) Text() string {
	return p.raw
}

// Allows reports whether agent may crawl path.
func (p *RobotsPolicy) Allows(path, agent string) bool {
	return p.data.TestAgent(path, agent)
}
