package webhook

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/prep-library-bot/internal/lineutil"
	"github.com/garyellow/prep-library-bot/internal/reply"
)

// Convert maps a payload to a LINE message. Plain payloads become text
// messages; book payloads become a flex bubble with the cover as hero image
// when LINE can display it.
func Convert(p reply.Payload) messaging_api.MessageInterface {
	if p.Kind == reply.KindPlain {
		return lineutil.NewTextMessage(p.Text)
	}
	return lineutil.NewFlexMessage("📖 "+p.Book.Name, bookBubble(p).FlexBubble)
}

// ConvertAll converts payloads in order.
func ConvertAll(payloads []reply.Payload) []messaging_api.MessageInterface {
	messages := make([]messaging_api.MessageInterface, 0, len(payloads))
	for _, p := range payloads {
		messages = append(messages, Convert(p))
	}
	return messages
}

// bookBubble lays out one book:
//
//	┌──────────────────────────┐
//	│ [cover image, optional]  │
//	│ 📖 Name                  │
//	│ ──────────────────────── │
//	│ ✍️ Author   ...          │
//	│ 📅 Edition  ...          │
//	├──────────────────────────┤
//	│ [Download] [How to]      │
//	│ [Join PrepLibrary]       │
//	└──────────────────────────┘
func bookBubble(p reply.Payload) *lineutil.FlexBubble {
	var hero messaging_api.FlexComponentInterface
	if p.Kind == reply.KindPhoto && lineutil.ValidImageURL(p.PhotoURL) {
		hero = lineutil.NewHeroImage(p.PhotoURL)
	}

	body := lineutil.NewFlexBox("vertical",
		lineutil.NewFlexText("📖 "+p.Book.Name).
			WithWeight("bold").
			WithSize("lg").
			WithColor(lineutil.ColorText).
			WithWrap(true).
			WithMaxLines(3).
			WithLineSpacing(lineutil.LineSpacingNormal).FlexText,
		lineutil.NewFlexSeparator("md"),
		lineutil.NewInfoRow("✍️", "Author", p.Book.Author).WithMargin("md").FlexBox,
		lineutil.NewInfoRow("📅", "Edition", p.Book.Edition).FlexBox,
	).WithSpacing("sm").WithPaddingAll(lineutil.SpacingL)

	return lineutil.NewFlexBubble(hero, body, footer(p.Menu))
}

// footer renders menu rows as button rows. The first button overall is the
// primary action.
func footer(menu [][]reply.Link) *lineutil.FlexBox {
	rows := make([][]*lineutil.FlexButton, 0, len(menu))
	first := true
	for _, links := range menu {
		row := make([]*lineutil.FlexButton, 0, len(links))
		for _, l := range links {
			btn := lineutil.NewFlexButton(lineutil.NewURIAction(l.Label, l.URL)).WithHeight("sm")
			if first {
				btn.WithStyle("primary").WithColor(lineutil.ColorButtonPrimary)
				first = false
			} else {
				btn.WithStyle("secondary")
			}
			row = append(row, btn)
		}
		rows = append(rows, row)
	}
	return lineutil.NewButtonFooter(rows...).WithPaddingAll(lineutil.SpacingM)
}
