package broker

import (
	"context"

	"pneuma/internal/domain/entity"
)

type op int

const (
	opCreatePage op = iota
	opNavigate
	opEvaluate
	opScreenshot
	opCloseBrowser
	opShutdown
)

func (o op) String() string {
	switch o {
	case opCreatePage:
		return "create_page"
	case opNavigate:
		return "navigate"
	case opEvaluate:
		return "evaluate"
	case opScreenshot:
		return "screenshot"
	case opCloseBrowser:
		return "close_browser"
	case opShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

type request struct {
	ctx    context.Context
	op     op
	page   entity.PageID
	url    string
	opts   string
	script string
	reply  chan response
}

type response struct {
	page entity.PageID
	text string
	data []byte
	err  error
}
