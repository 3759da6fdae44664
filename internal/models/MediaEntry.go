package models

import "io"

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ContentRef is an opaque handle to the underlying bytes of an archived
// file. The bytes are owned by the file supplier; the core only ever
// asks for a fresh reader and must not assume one outlives a render pass.
type ContentRef interface {
	RelPath() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// ReshareInfo carries the attribution chain parsed from a primary-account
// filename. OriginalUser is the last marker in the chain (most recent).
type ReshareInfo struct {
	OriginalUser string `json:"originalUser"`
	ReshareCount int    `json:"reshareCount"`
}

// MediaEntry is one archived story. (Username, Date, Filename) uniquely
// identifies an entry within one load.
type MediaEntry struct {
	Username       string       `json:"username"`
	Filename       string       `json:"filename"`
	Date           string       `json:"date"`
	Type           MediaType    `json:"type"`
	SequenceNumber int          `json:"sequenceNumber"`
	Path           string       `json:"path"`
	ReshareInfo    *ReshareInfo `json:"reshareInfo,omitempty"`
	Ref            ContentRef   `json:"-"`
}
