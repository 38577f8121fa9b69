package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators, e.g. 12,345.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}
