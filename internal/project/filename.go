package project

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace  = regexp.MustCompile(`\s+`)
	dashes      = regexp.MustCompile(`-+`)
	underscores = regexp.MustCompile(`_+`)
)

const maxFilenameLen = 100

// SanitizeFilename replaces characters that are unsafe in file names.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "-")
	name = whitespace.ReplaceAllString(name, "_")
	name = dashes.ReplaceAllString(name, "-")
	name = underscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "-_")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	return name
}

// BaseName returns name without its extension.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func timestamped(base string, t time.Time) string {
	return fmt.Sprintf("%s_%s.png", base, t.UTC().Format("2006-01-02_15-04-05"))
}

// ResultFilename names a downloaded result, e.g.
// "processed-image-photo_2025-01-02_03-04-05.png".
func ResultFilename(kind ResultKind, original string, t time.Time) string {
	base := map[ResultKind]string{
		ResultInpaint:            "processed-image",
		ResultBackgroundRemoved:  "background-removed",
		ResultBackgroundReplaced: "background-replaced",
		ResultBackgroundBlurred:  "background-blurred",
	}[kind]
	if base == "" {
		base = "image"
	}
	if original != "" {
		if s := SanitizeFilename(BaseName(original)); s != "" {
			base += "-" + s
		}
	}
	return timestamped(base, t)
}

// BatchFilename names the index-th of total batch outputs with a zero
// padded sequence number.
func BatchFilename(base string, index, total int, t time.Time) string {
	width := len(fmt.Sprint(total))
	return timestamped(fmt.Sprintf("%s_%0*d", base, width, index+1), t)
}
