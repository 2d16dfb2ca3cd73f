// Package gorm provides a GORM-backed implementation of the uauth Store
// interface. It works with any database GORM supports and is the
// production alternative to the in-memory store.
//
// # Usage
//
//	db, err := gormstore.Open(dsn)
//	if err != nil { ... }
//	store := gormstore.New(db)
package gorm
