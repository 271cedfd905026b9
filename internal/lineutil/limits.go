package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template/Flex message alt text length
	MaxActionLabelLength = 40   // URI action label inside a Flex button
	MaxImageURLLength    = 2000 // Flex image URL, HTTPS only

	// MaxMessagesPerReply is the number of messages one reply token accepts.
	MaxMessagesPerReply = 5
)
