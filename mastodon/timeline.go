package mastodon

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// TimelineView selects which timeline a fetch targets. Home and local/public
// map to different endpoints; local is the public endpoint restricted to the
// instance's own posts.
type TimelineView string

const (
	ViewHome   TimelineView = "home"
	ViewLocal  TimelineView = "local"
	ViewPublic TimelineView = "public"
)

// ParseTimelineView validates a user-supplied view name.
func ParseTimelineView(s string) (TimelineView, error) {
	switch TimelineView(s) {
	case ViewHome, ViewLocal, ViewPublic:
		return TimelineView(s), nil
	}
	return "", errors.Errorf("unknown timeline view %q", s)
}

// Status is one timeline post, trimmed to the fields the views render.
type Status struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Account   Account   `json:"account"`
	Reblog    *Status   `json:"reblog,omitempty"`
}

// TimelineOptions controls paging. MaxID, when set, fetches posts older than
// the given status ID.
type TimelineOptions struct {
	Limit int
	MaxID string
}

// Timeline fetches one page of the given view from the configured instance.
func (c *Client) Timeline(ctx context.Context, token string, view TimelineView, opts TimelineOptions) ([]Status, error) {
	return c.TimelineAt(ctx, c.baseURL, token, view, opts)
}

// TimelineAt is Timeline against an arbitrary instance, for sessions that were
// established with a token belonging to a different server.
func (c *Client) TimelineAt(ctx context.Context, instanceURL, token string, view TimelineView, opts TimelineOptions) ([]Status, error) {
	baseURL, err := NormalizeInstanceURL(instanceURL)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.TimelineAt] instance URL")
	}

	endpoint := "/api/v1/timelines/home"
	query := url.Values{}

	switch view {
	case ViewHome:
	case ViewPublic:
		endpoint = "/api/v1/timelines/public"
	case ViewLocal:
		endpoint = "/api/v1/timelines/public"
		query.Set("local", "true")
	default:
		return nil, errors.Errorf("[Client.TimelineAt] unknown view %q", view)
	}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.MaxID != "" {
		query.Set("max_id", opts.MaxID)
	}

	var statuses []Status
	if err := c.get(ctx, baseURL, token, endpoint, query, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
