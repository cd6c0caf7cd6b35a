package internal

import (
	"birdsong/internal/preferences"
	"birdsong/internal/providers"
	"birdsong/internal/quarters"
	"birdsong/internal/structures"
	"birdsong/internal/view"
)

// Session bundles what the one-shot CLI commands need.
type Session struct {
	Conf     *structures.Config
	Logger   providers.Logger
	Store    *preferences.Store
	View     *view.Controller
	Quarters quarters.LookupInterface
}

func NewSession(conf *structures.Config, logger providers.Logger, store *preferences.Store, viewController *view.Controller, lookup quarters.LookupInterface) *Session {
	return &Session{
		Conf:     conf,
		Logger:   logger,
		Store:    store,
		View:     viewController,
		Quarters: lookup,
	}
}
