package server

import "fmt"

// ANSI escapes for the development route listing.
const (
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiGray    = "\033[90m"
	ansiReset   = "\033[0m"
)

var methodColours = map[string]string{
	"GET":    ansiGreen,
	"POST":   ansiBlue,
	"PUT":    ansiCyan,
	"PATCH":  ansiMagenta,
	"DELETE": ansiYellow,
}

func colourMethod(method string) string {
	colour, ok := methodColours[method]
	if !ok {
		colour = ansiGray
	}
	return colour + fmt.Sprintf("%-6s", method) + ansiReset
}
