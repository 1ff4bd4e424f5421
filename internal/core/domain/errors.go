package domain

import "errors"

var (
	ErrUnknownSource  = errors.New("unknown listing source")
	ErrListingExists  = errors.New("listing already exists")
	ErrSourceBusy     = errors.New("crawl for source is already running")
	ErrDetailsMissing = errors.New("listing details not found in document")
)
