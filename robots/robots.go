// Package robots evaluates a site's robots.txt for a target path. The
// verdict is advisory: the pipeline surfaces a restriction to the operator
// but never silently blocks on it, and any failure to obtain the policy
// file fails open.
//
// Evaluation is deliberately minimal: only the first `User-agent: *` block
// is consulted and Disallow rules match by path prefix. Merged groups,
// wildcard patterns, Crawl-delay and the rest of the robots.txt vocabulary
// are out of scope.
package robots

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/floracart/scraper/fetch"
)

// Verdict is the outcome of a policy check.
type Verdict struct {
	Allowed bool
	Message string
}

// Checker fetches and evaluates robots.txt files, caching the raw policy
// body per host.
type Checker struct {
	client *fetch.Client
	cache  *expirable.LRU[string, string]
}

// NewChecker constructs a checker on top of the given fetch client. The
// client should carry a short timeout; robots.txt is not worth waiting for.
func NewChecker(client *fetch.Client, ttl time.Duration) *Checker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Checker{
		client: client,
		cache:  expirable.NewLRU[string, string](64, nil, ttl),
	}
}

// Check reports whether the site's crawl policy permits fetching target.
// Unreachable or unparseable policy files never block.
func (c *Checker) Check(ctx context.Context, target string) Verdict {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return Verdict{Allowed: true, Message: "target URL could not be parsed, continuing"}
	}

	body, ok := c.cache.Get(parsed.Host)
	if !ok {
		robotsURL := parsed.Scheme + "://" + parsed.Host + "/robots.txt"
		raw, _, err := c.client.Get(ctx, robotsURL)
		if err != nil {
			return Verdict{Allowed: true, Message: "robots.txt not found or unreadable, continuing"}
		}
		body = string(raw)
		c.cache.Add(parsed.Host, body)
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}
	return evaluate(body, path)
}

// evaluate scans the policy body for the first wildcard user-agent block and
// applies its Disallow rules by prefix.
func evaluate(body, path string) Verdict {
	lines := strings.Split(body, "\n")

	inBlock := false
	for _, line := range lines {
		line = strings.ToLower(strings.TrimSpace(line))

		if strings.HasPrefix(line, "user-agent:") {
			if inBlock {
				// First wildcard block ends here; later blocks are ignored.
				break
			}
			agent := strings.TrimSpace(strings.TrimPrefix(line, "user-agent:"))
			inBlock = agent == "*"
			continue
		}

		if !inBlock || !strings.HasPrefix(line, "disallow:") {
			continue
		}
		disallowed := strings.TrimSpace(strings.TrimPrefix(line, "disallow:"))
		if disallowed == "" {
			continue
		}
		if disallowed == "/" || strings.HasPrefix(path, disallowed) {
			return Verdict{
				Allowed: false,
				Message: fmt.Sprintf("robots.txt disallows scraping under %s", disallowed),
			}
		}
	}

	return Verdict{Allowed: true, Message: "robots.txt permits scraping or has no restrictions"}
}
