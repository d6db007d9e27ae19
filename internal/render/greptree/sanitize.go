package greptree

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var filenameReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_", " ", "_",
)

// SanitizeFilename maps a type or member name to a filesystem-safe form.
// Names are NFC-normalized first so the same logical name always sanitizes
// to the same bytes regardless of how the source encoded it.
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(norm.NFC.String(name))
}
