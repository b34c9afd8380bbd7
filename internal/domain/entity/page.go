package entity

import (
	"strconv"

	"github.com/ysmood/gson"
)

// PageID is the opaque page token handed out by the bridge. It is only forwarded.
type PageID uint32

func (id PageID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// NavigationResult is the decoded metadata returned by a navigate call.
// Failures never reach it; they come back as *automation.NavigationError.
type NavigationResult struct {
	Meta gson.JSON
}

func (r *NavigationResult) OK() bool {
	return r.Meta.Get("ok").Bool()
}

func (r *NavigationResult) URL() string {
	return r.Meta.Get("url").Str()
}

func (r *NavigationResult) Title() string {
	return r.Meta.Get("title").Str()
}

func (r *NavigationResult) Engine() string {
	return r.Meta.Get("engine").Str()
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
