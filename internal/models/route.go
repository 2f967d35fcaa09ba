package models

import (
	"fmt"
	"net/url"
	"strings"
)

// RouteKind enumerates the client routes.
type RouteKind int

const (
	UploadRoute RouteKind = iota // "/"
	StatusRoute                  // "/status/:jobId"
	ReviewRoute                  // "/review/:deckName"
	DecksRoute                   // "/decks"
)

// Route is a parsed client location. Param holds the job id or deck name, unescaped.
type Route struct {
	Kind  RouteKind
	Param string
}

// Review returns the route that opens deck in the review workflow.
func Review(deck string) Route { return Route{Kind: ReviewRoute, Param: deck} }

// Status returns the route that tracks jobID.
func Status(jobID string) Route { return Route{Kind: StatusRoute, Param: jobID} }

// String renders the route with its parameter path-escaped.
func (r Route) String() string {
	switch r.Kind {
	case StatusRoute:
		return "/status/" + url.PathEscape(r.Param)
	case ReviewRoute:
		return "/review/" + url.PathEscape(r.Param)
	case DecksRoute:
		return "/decks"
	default:
		return "/"
	}
}

// ParseRoute parses one of "/", "/status/:jobId", "/review/:deckName" or "/decks".
func ParseRoute(s string) (Route, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "/")
	if trimmed == "" {
		return Route{Kind: UploadRoute}, nil
	}
	if trimmed == "/decks" {
		return Route{Kind: DecksRoute}, nil
	}

	for prefix, kind := range map[string]RouteKind{"/status/": StatusRoute, "/review/": ReviewRoute} {
		rest, ok := strings.CutPrefix(trimmed, prefix)
		if !ok {
			continue
		}
		if rest == "" || strings.Contains(rest, "/") {
			break
		}
		param, err := url.PathUnescape(rest)
		if err != nil {
			return Route{}, fmt.Errorf("invalid route %q: %w", s, err)
		}
		return Route{Kind: kind, Param: param}, nil
	}

	return Route{}, fmt.Errorf("unknown route %q", s)
}
