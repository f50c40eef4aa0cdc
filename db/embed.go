// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema contains the DDL for the books, cart_items, orders, and
// order_items tables.
//
//go:embed migrations/001_schema.sql
var Schema string
