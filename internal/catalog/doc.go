// Package catalog holds the behaviour defined on top of a parsed translation
// catalog: runtime lookup with source fallback, positional placeholder
// substitution, validation and completion statistics.
package catalog
