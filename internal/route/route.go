// Package route maps in-app paths onto screens.
package route

import (
	"net/url"
	"strconv"
	"strings"
)

type Screen string

const (
	ScreenTodos    Screen = "todos"
	ScreenAbout    Screen = "about"
	ScreenNotFound Screen = "notfound"
)

const (
	HomePath  = "/"
	AboutPath = "/about"
)

// Route is a parsed location. Page holds the raw page query value, unvalidated.
type Route struct {
	Screen Screen
	Path   string
	Page   string
}

func Parse(raw string) Route {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = HomePath
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Route{Screen: ScreenNotFound, Path: raw}
	}
	path := u.Path
	if path == "" {
		path = HomePath
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	switch path {
	case HomePath:
		return Route{Screen: ScreenTodos, Path: path, Page: u.Query().Get("page")}
	case AboutPath:
		return Route{Screen: ScreenAbout, Path: path}
	default:
		return Route{Screen: ScreenNotFound, Path: path}
	}
}

// Home is the todos route, optionally pinned to a page.
func Home(page int) Route {
	if page <= 1 {
		return Route{Screen: ScreenTodos, Path: HomePath}
	}
	return Route{Screen: ScreenTodos, Path: HomePath, Page: strconv.Itoa(page)}
}

func (r Route) String() string {
	if r.Page == "" {
		return r.Path
	}
	return r.Path + "?page=" + url.QueryEscape(r.Page)
}
