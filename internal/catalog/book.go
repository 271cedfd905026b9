package catalog

import "strings"

// Book is one catalog row.
type Book struct {
	Name        string
	Author      string
	Edition     string
	DownloadURL string
	CoverURL    string // optional
}

// HasCover reports whether the book should be sent as a photo.
func (b Book) HasCover() bool {
	return strings.TrimSpace(b.CoverURL) != ""
}
