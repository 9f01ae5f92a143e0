package domain

import "time"

// File is an imported catalog.
type File struct {
	ID             int64     `json:"id"`
	Path           string    `json:"path"`
	Format         string    `json:"format"`
	Language       string    `json:"language"`
	SourceLanguage string    `json:"source_language"`
	Version        string    `json:"version"`
	Hash           string    `json:"hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// Unit is the stored form of a message, identified by (file, context, key,
// comment).
type Unit struct {
	ID          int64     `json:"id"`
	FileID      int64     `json:"file_id"`
	Context     string    `json:"context"`
	Key         string    `json:"key"`
	SourceText  string    `json:"source_text"`
	Comment     string    `json:"comment"`
	Numerus     bool      `json:"numerus"`
	Position    int       `json:"position"`
	MetadataRaw string    `json:"metadata_json"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnitMetadata is serialized into Unit.MetadataRaw.
type UnitMetadata struct {
	ID                string     `json:"id,omitempty"`
	ExtraComment      string     `json:"extra_comment,omitempty"`
	TranslatorComment string     `json:"translator_comment,omitempty"`
	ContextComment    string     `json:"context_comment,omitempty"`
	Locations         []Location `json:"locations,omitempty"`
}
