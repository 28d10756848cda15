// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: AggregateModel, the columns shared by aggregate tables
// - catalog.go: Product
// - partner.go: Client and its balance entries
// - sale.go: Sale with its items and payments
// - identity.go: User
// - search.go: name folding for accent and case insensitive search
package models
