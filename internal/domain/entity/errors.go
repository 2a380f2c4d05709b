package entity

import "errors"

var (
	ErrSourceNotConfigured  = errors.New("sheet source not configured")
	ErrCatalogNotConfigured = errors.New("external catalog not configured")
	ErrShelfNotFound        = errors.New("shelf not found")
	ErrBoxNotFound          = errors.New("box not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
