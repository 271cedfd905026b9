package lineutil

import (
	"math"
	"net/url"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// FlexBubble wrapper
type FlexBubble struct {
	*messaging_api.FlexBubble
}

// NewFlexBubble creates a new Flex Bubble container.
// hero may be nil (no image); body and footer must be FlexBox or nil.
func NewFlexBubble(hero messaging_api.FlexComponentInterface, body *FlexBox, footer *FlexBox) *FlexBubble {
	bubble := &messaging_api.FlexBubble{}
	if hero != nil {
		bubble.Hero = hero
	}
	if body != nil {
		bubble.Body = body.FlexBox
	}
	if footer != nil {
		bubble.Footer = footer.FlexBox
	}
	return &FlexBubble{bubble}
}

// NewHeroImage creates a full-width cover image for a bubble hero.
func NewHeroImage(url string) *messaging_api.FlexImage {
	return &messaging_api.FlexImage{
		Url:         url,
		Size:        "full",
		AspectRatio: "3:4",
		AspectMode:  messaging_api.FlexImageASPECT_MODE("cover"),
	}
}

// ValidImageURL reports whether LINE accepts raw as an image URL. Images must
// be served over HTTPS; any other scheme makes LINE reject the whole reply.
func ValidImageURL(raw string) bool {
	if utf8.RuneCountInString(raw) > MaxImageURLLength {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}

// FlexBox wrapper for messaging_api.FlexBox with fluent API.
type FlexBox struct {
	*messaging_api.FlexBox
}

// NewFlexBox creates a new FlexBox with the specified layout and contents.
func NewFlexBox(layout string, contents ...messaging_api.FlexComponentInterface) *FlexBox {
	return &FlexBox{&messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT(layout),
		Contents: contents,
	}}
}

// WithSpacing sets the spacing between components.
func (b *FlexBox) WithSpacing(spacing string) *FlexBox {
	b.Spacing = spacing
	return b
}

// WithMargin sets the margin of the box.
func (b *FlexBox) WithMargin(margin string) *FlexBox {
	b.Margin = margin
	return b
}

// WithPaddingAll sets the padding for all sides of the box.
func (b *FlexBox) WithPaddingAll(padding string) *FlexBox {
	b.PaddingAll = padding
	return b
}

// FlexText wrapper for messaging_api.FlexText with fluent API.
type FlexText struct {
	*messaging_api.FlexText
}

// NewFlexText creates a new FlexText with the specified text.
func NewFlexText(text string) *FlexText {
	return &FlexText{&messaging_api.FlexText{
		Text: text,
	}}
}

// WithWeight sets the font weight (regular/bold).
func (t *FlexText) WithWeight(weight string) *FlexText {
	t.Weight = messaging_api.FlexTextWEIGHT(weight)
	return t
}

// WithSize sets the font size.
func (t *FlexText) WithSize(size string) *FlexText {
	t.Size = size
	return t
}

// WithColor sets the text color.
func (t *FlexText) WithColor(color string) *FlexText {
	t.Color = color
	return t
}

// WithWrap enables or disables text wrapping.
func (t *FlexText) WithWrap(wrap bool) *FlexText {
	t.Wrap = wrap
	return t
}

// WithFlex sets the flex factor for the text component.
func (t *FlexText) WithFlex(flex int) *FlexText {
	t.Flex = clampInt32(flex)
	return t
}

// WithMargin sets the margin of the text component.
func (t *FlexText) WithMargin(margin string) *FlexText {
	t.Margin = margin
	return t
}

// WithMaxLines sets the maximum number of lines to display.
func (t *FlexText) WithMaxLines(lines int) *FlexText {
	t.MaxLines = clampInt32(lines)
	return t
}

// WithLineSpacing sets the spacing between lines.
func (t *FlexText) WithLineSpacing(spacing string) *FlexText {
	t.LineSpacing = spacing
	return t
}

// FlexButton wrapper for messaging_api.FlexButton with fluent API.
type FlexButton struct {
	*messaging_api.FlexButton
}

// NewFlexButton creates a new FlexButton with the specified action.
func NewFlexButton(action messaging_api.ActionInterface) *FlexButton {
	return &FlexButton{&messaging_api.FlexButton{
		Action: action,
	}}
}

// WithStyle sets the button style (link/primary/secondary).
func (b *FlexButton) WithStyle(style string) *FlexButton {
	b.Style = messaging_api.FlexButtonSTYLE(style)
	return b
}

// WithColor sets the button color.
func (b *FlexButton) WithColor(color string) *FlexButton {
	b.Color = color
	return b
}

// WithHeight sets the button height (sm/md).
func (b *FlexButton) WithHeight(height string) *FlexButton {
	b.Height = messaging_api.FlexButtonHEIGHT(height)
	return b
}

// NewFlexSeparator creates a separator with the given top margin.
func NewFlexSeparator(margin string) *messaging_api.FlexSeparator {
	return &messaging_api.FlexSeparator{Margin: margin, Color: ColorSeparator}
}

// TruncateRunes truncates text by rune count (not byte count) to properly handle UTF-8.
// Returns truncated string with "..." if exceeds maxRunes.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// NewInfoRow creates a horizontal row: emoji and gray label on the left, value on the right.
// An empty value is rendered as "-" because LINE rejects empty text components.
//
// Layout:
//
//	┌─────────────────────────────┐
//	│ [emoji] [label]  [value]    │
//	└─────────────────────────────┘
func NewInfoRow(emoji, label, value string) *FlexBox {
	if value == "" {
		value = "-"
	}
	return NewFlexBox("baseline",
		NewFlexText(emoji).WithSize("sm").WithFlex(0).FlexText,
		NewFlexText(label).WithColor(ColorLabel).WithSize("sm").WithFlex(0).WithMargin("sm").FlexText,
		NewFlexText(value).WithColor(ColorText).WithSize("sm").WithWrap(true).WithMargin("md").FlexText,
	).WithSpacing("sm")
}

// NewButtonRow creates a horizontal box containing buttons with equal width distribution.
// Each button gets flex:1 to share space equally.
func NewButtonRow(buttons ...*FlexButton) *FlexBox {
	contents := make([]messaging_api.FlexComponentInterface, 0, len(buttons))
	for _, btn := range buttons {
		if btn != nil {
			btnBox := NewFlexBox("vertical", btn.FlexButton)
			btnBox.Flex = 1
			contents = append(contents, btnBox.FlexBox)
		}
	}
	return NewFlexBox("horizontal", contents...).WithSpacing("sm")
}

// NewButtonFooter creates a footer with multiple rows of buttons.
// Each row is rendered horizontally, rows are stacked vertically.
// Empty rows are dropped.
func NewButtonFooter(rows ...[]*FlexButton) *FlexBox {
	var contents []messaging_api.FlexComponentInterface
	for _, row := range rows {
		var valid []*FlexButton
		for _, btn := range row {
			if btn != nil {
				valid = append(valid, btn)
			}
		}
		if len(valid) > 0 {
			contents = append(contents, NewButtonRow(valid...).FlexBox)
		}
	}
	return NewFlexBox("vertical", contents...).WithSpacing("sm")
}

func clampInt32(n int) int32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}
