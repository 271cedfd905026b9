package lineutil

// 4-Point Grid Spacing System
const (
	SpacingM = "12px"
	SpacingL = "16px"

	LineSpacingNormal = "6px"
)

// LINE Design System Colors
// Reference: https://designsystem.line.me/LDSM/foundation/color/line-color-guide-ex-en
const (
	ColorLineGreen = "#06C755"
	ColorGray300   = "#DFDFDF"
	ColorGray900   = "#111111"

	ColorText          = ColorGray900
	ColorLabel         = "#666666" // 5.7:1 contrast ratio, WCAG AA
	ColorSeparator     = ColorGray300
	ColorButtonPrimary = ColorLineGreen
)
