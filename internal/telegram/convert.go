package telegram

import (
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/garyellow/prep-library-bot/internal/reply"
)

// MaxCaptionLength is the Bot API limit for a photo caption, in UTF-16 code units.
const MaxCaptionLength = 1024

// EscapeMarkdown escapes s for the legacy Markdown parse mode used by book captions.
func EscapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// Convert builds the Bot API request for one payload. Photo payloads become a
// sendPhoto with the cover URL; everything else is a sendMessage. A caption too
// long for sendPhoto is sent as a sendMessage instead, without the cover.
func Convert(chatID int64, p reply.Payload) tgbotapi.Chattable {
	var markup any
	if len(p.Menu) > 0 {
		markup = keyboard(p.Menu)
	}

	parseMode := ""
	if p.Markdown {
		parseMode = tgbotapi.ModeMarkdown
	}

	if p.Kind == reply.KindPhoto && captionFits(p.Text) {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.PhotoURL))
		photo.Caption = p.Text
		photo.ParseMode = parseMode
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		return photo
	}

	msg := tgbotapi.NewMessage(chatID, p.Text)
	msg.ParseMode = parseMode
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

// captionFits measures the raw text, markup included, so it never undercounts.
func captionFits(text string) bool {
	return len(utf16.Encode([]rune(text))) <= MaxCaptionLength
}

func keyboard(menu [][]reply.Link) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(menu))
	for _, links := range menu {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(links))
		for _, l := range links {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(l.Label, l.URL))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
