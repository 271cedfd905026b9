// Package reply turns search results into transport-neutral outbound payloads.
package reply

import (
	"fmt"

	"github.com/garyellow/prep-library-bot/internal/catalog"
)

// Fixed user-facing texts.
const (
	WelcomeText  = "📚 Welcome to *Prep Library*! Send a book name to get all related books."
	NotFoundText = "❌ No books found. Try another search!"

	DownloadLabel      = "📥 Download Link"
	HowToDownloadLabel = "❓ How to Download"
	CommunityLabel     = "📚 Join PrepLibrary"

	captionSeparator = "───────────────"
	captionFooter    = "Click the buttons below to download or join our group!"
)

// Kind selects the transport call used to deliver a payload.
type Kind string

const (
	// KindPlain is a bare text message without markup or menu.
	KindPlain Kind = "plain"
	// KindText is a book caption with a link menu and no image.
	KindText Kind = "text"
	// KindPhoto is a cover image with the book caption and link menu.
	KindPhoto Kind = "photo"
)

// Link is one menu button that opens a URL.
type Link struct {
	Label string
	URL   string
}

// Payload is one outbound message.
type Payload struct {
	Kind Kind

	// Text is the message body, or the caption for KindPhoto.
	Text string
	// Markdown reports whether Text uses Telegram legacy Markdown markers.
	Markdown bool

	// PhotoURL is set only for KindPhoto.
	PhotoURL string

	// Menu rows, top to bottom. Empty for KindPlain.
	Menu [][]Link

	// Book is the source record for KindText and KindPhoto, for transports
	// that lay the fields out themselves instead of using Text.
	Book catalog.Book
}

// LinkCount returns the number of links across all menu rows.
func (p Payload) LinkCount() int {
	n := 0
	for _, row := range p.Menu {
		n += len(row)
	}
	return n
}

// Welcome is the reply to /start.
func Welcome() Payload {
	return Payload{Kind: KindPlain, Text: WelcomeText}
}

// NotFound is the reply to a query without results.
func NotFound() Payload {
	return Payload{Kind: KindPlain, Text: NotFoundText}
}

// Formatter builds book payloads. It holds no mutable state.
type Formatter struct {
	howToDownloadURL string
	communityURL     string
	escape           func(string) string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithEscaper escapes book fields before they are placed inside the Markdown caption.
func WithEscaper(escape func(string) string) Option {
	return func(f *Formatter) { f.escape = escape }
}

// NewFormatter creates a Formatter with the two static menu links.
func NewFormatter(howToDownloadURL, communityURL string, opts ...Option) *Formatter {
	f := &Formatter{
		howToDownloadURL: howToDownloadURL,
		communityURL:     communityURL,
		escape:           func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format builds the payload for one book. A non-blank cover selects KindPhoto.
func (f *Formatter) Format(b catalog.Book) Payload {
	p := Payload{
		Kind:     KindText,
		Text:     f.Caption(b),
		Markdown: true,
		Menu:     f.Menu(b),
		Book:     b,
	}
	if b.HasCover() {
		p.Kind = KindPhoto
		p.PhotoURL = b.CoverURL
	}
	return p
}

// FormatAll formats books in order, or returns the not-found reply when there are none.
func (f *Formatter) FormatAll(books []catalog.Book) []Payload {
	if len(books) == 0 {
		return []Payload{NotFound()}
	}
	payloads := make([]Payload, len(books))
	for i, b := range books {
		payloads[i] = f.Format(b)
	}
	return payloads
}

// Caption renders the Markdown caption for b.
func (f *Formatter) Caption(b catalog.Book) string {
	return fmt.Sprintf("📖 *%s* \n✍️ *Author:* %s\n📅 *Edition:* %s\n%s\n%s",
		f.escape(b.Name),
		f.escape(b.Author),
		f.escape(b.Edition),
		captionSeparator,
		captionFooter,
	)
}

// Menu returns the download and help links on the first row and the community link on the second.
func (f *Formatter) Menu(b catalog.Book) [][]Link {
	return [][]Link{
		{
			{Label: DownloadLabel, URL: b.DownloadURL},
			{Label: HowToDownloadLabel, URL: f.howToDownloadURL},
		},
		{
			{Label: CommunityLabel, URL: f.communityURL},
		},
	}
}
