package reply

import (
	"strings"
	"testing"

	"github.com/garyellow/prep-library-bot/internal/catalog"
)

const (
	howTo     = "https://t.me/StudyRatna_2/42"
	community = "https://t.me/PrepLibrary_Discussion"
)

func physics() catalog.Book {
	return catalog.Book{Name: "Physics Vol 1", Author: "A. Kumar", Edition: "3rd", DownloadURL: "http://x/1"}
}

func checkCaptionFields(t *testing.T, text string) {
	t.Helper()
	for _, field := range []string{"Physics Vol 1", "A. Kumar", "3rd"} {
		if !strings.Contains(text, field) {
			t.Errorf("caption %q does not contain %q", text, field)
		}
	}
}

func TestFormat_TextVariant(t *testing.T) {
	t.Parallel()

	p := NewFormatter(howTo, community).Format(physics())

	if p.Kind != KindText {
		t.Errorf("Kind = %v, want %v", p.Kind, KindText)
	}
	if p.PhotoURL != "" {
		t.Errorf("PhotoURL = %q, want empty", p.PhotoURL)
	}
	if !p.Markdown {
		t.Error("book payloads use Markdown")
	}
	if p.Book != physics() {
		t.Errorf("Book = %+v, want %+v", p.Book, physics())
	}
	checkCaptionFields(t, p.Text)
}

func TestFormat_PhotoVariant(t *testing.T) {
	t.Parallel()

	b := physics()
	b.CoverURL = "https://img.example.com/p.jpg"
	p := NewFormatter(howTo, community).Format(b)

	if p.Kind != KindPhoto {
		t.Errorf("Kind = %v, want %v", p.Kind, KindPhoto)
	}
	if p.PhotoURL != b.CoverURL {
		t.Errorf("PhotoURL = %q, want %q", p.PhotoURL, b.CoverURL)
	}
	checkCaptionFields(t, p.Text)
}

func TestFormat_BlankCoverIsText(t *testing.T) {
	t.Parallel()

	b := physics()
	b.CoverURL = "   "
	if got := NewFormatter(howTo, community).Format(b).Kind; got != KindText {
		t.Errorf("Kind = %v, want %v", got, KindText)
	}
}

func TestFormat_Menu(t *testing.T) {
	t.Parallel()

	want := [][]Link{
		{{Label: DownloadLabel, URL: "http://x/1"}, {Label: HowToDownloadLabel, URL: howTo}},
		{{Label: CommunityLabel, URL: community}},
	}

	for _, cover := range []string{"", "https://img.example.com/p.jpg"} {
		b := physics()
		b.CoverURL = cover
		p := NewFormatter(howTo, community).Format(b)

		if p.LinkCount() != 3 {
			t.Errorf("cover %q: LinkCount = %d, want 3", cover, p.LinkCount())
		}
		if len(p.Menu) != len(want) {
			t.Fatalf("cover %q: rows = %d, want %d", cover, len(p.Menu), len(want))
		}
		for i := range want {
			if len(p.Menu[i]) != len(want[i]) {
				t.Fatalf("cover %q: row %d has %d links, want %d", cover, i, len(p.Menu[i]), len(want[i]))
			}
			for j := range want[i] {
				if p.Menu[i][j] != want[i][j] {
					t.Errorf("cover %q: Menu[%d][%d] = %+v, want %+v", cover, i, j, p.Menu[i][j], want[i][j])
				}
			}
		}
	}
}

func TestCaption_Layout(t *testing.T) {
	t.Parallel()

	got := NewFormatter(howTo, community).Caption(physics())
	want := "📖 *Physics Vol 1* \n" +
		"✍️ *Author:* A. Kumar\n" +
		"📅 *Edition:* 3rd\n" +
		"───────────────\n" +
		"Click the buttons below to download or join our group!"
	if got != want {
		t.Errorf("Caption =\n%s\nwant\n%s", got, want)
	}
}

func TestCaption_Escaper(t *testing.T) {
	t.Parallel()

	escape := func(s string) string { return strings.ReplaceAll(s, "_", `\_`) }
	f := NewFormatter(howTo, community, WithEscaper(escape))

	b := physics()
	b.Name = "snake_case guide"
	if got := f.Caption(b); !strings.Contains(got, `*snake\_case guide*`) {
		t.Errorf("Caption = %q, want escaped name", got)
	}
	// Menu URLs are never escaped.
	b.DownloadURL = "http://x/a_b"
	if got := f.Format(b).Menu[0][0].URL; got != "http://x/a_b" {
		t.Errorf("download URL = %q, want unescaped", got)
	}
}

func TestFormatAll(t *testing.T) {
	t.Parallel()

	f := NewFormatter(howTo, community)

	got := f.FormatAll(nil)
	if len(got) != 1 || got[0].Kind != KindPlain || got[0].Text != NotFoundText {
		t.Errorf("FormatAll(nil) = %+v, want the not-found reply", got)
	}

	second := physics()
	second.Name = "Physics Vol 2"
	got = f.FormatAll([]catalog.Book{physics(), second})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Book.Name != "Physics Vol 1" || got[1].Book.Name != "Physics Vol 2" {
		t.Errorf("order = %q, %q; want catalog order", got[0].Book.Name, got[1].Book.Name)
	}
}

func TestFixedReplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Payload
		want string
	}{
		{"welcome", Welcome(), WelcomeText},
		{"not found", NotFound(), NotFoundText},
	}
	for _, tt := range tests {
		if tt.p.Kind != KindPlain {
			t.Errorf("%s: Kind = %v, want %v", tt.name, tt.p.Kind, KindPlain)
		}
		if tt.p.Text != tt.want {
			t.Errorf("%s: Text = %q, want %q", tt.name, tt.p.Text, tt.want)
		}
		if tt.p.Markdown || tt.p.LinkCount() != 0 {
			t.Errorf("%s: fixed replies are plain text without links", tt.name)
		}
	}
}
