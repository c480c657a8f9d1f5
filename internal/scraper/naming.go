package scraper

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"
)

// sniffExtensions maps sniffed content types to stored-file extensions.
// Sniffing looks at the bytes, never the URL, because courts routinely
// serve PDFs from ".wpd" links and vice versa.
var sniffExtensions = map[string]string{
	"application/pdf": ".pdf",
	"text/html":       ".html",
	"text/plain":      ".txt",
	"audio/mpeg":      ".mp3",
	"audio/wave":      ".wav",
	"audio/aiff":      ".aiff",
}

// DetectExtension sniffs the content bytes and returns the matching file
// extension, or false when the type is unrecognized.
func DetectExtension(content []byte) (string, bool) {
	mime := http.DetectContentType(content)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	ext, ok := sniffExtensions[strings.TrimSpace(mime)]
	return ext, ok
}

// acceptedAudioExtensions are the audio types the processing workers
// handle. Anything else falls back to the download URL's own extension.
var acceptedAudioExtensions = map[string]bool{".mp3": true, ".wma": true}

// AudioExtension picks the stored extension for an audio payload:
// sniffed type when it is an accepted audio type, the URL extension
// otherwise.
func AudioExtension(content []byte, downloadURL string) string {
	if ext, ok := DetectExtension(content); ok && acceptedAudioExtensions[ext] {
		return ext
	}
	return URLExtension(downloadURL)
}

// URLExtension returns the lower-cased extension of a download URL's
// path, including the dot, or empty when there is none.
func URLExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(path.Ext(rawURL))
	}
	return strings.ToLower(path.Ext(u.Path))
}

// Trunc shortens s to at most length runes, cutting at the last word
// boundary that fits when there is one. Stored file names are built from
// lower-cased case names and must stay short.
func Trunc(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:length])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// FileName builds the stored-file name for an item: the truncated,
// lower-cased case name plus the extension. Lower-casing matters for
// case-insensitive object stores.
func FileName(caseName string, length int, ext string) string {
	return Trunc(strings.ToLower(caseName), length) + ext
}

// ParseCitation splits a citation string of the form
// "<volume> <reporter> <page>" (e.g. "539 U.S. 558") into a Citation.
// Returns false for strings that do not fit the shape.
func ParseCitation(raw string, citeType CitationType) (Citation, bool) {
	fields := strings.Fields(raw)
	if len(fields) < 3 {
		return Citation{}, false
	}
	volume, err := strconv.Atoi(fields[0])
	if err != nil {
		return Citation{}, false
	}
	return Citation{
		Volume:   volume,
		Reporter: strings.Join(fields[1:len(fields)-1], " "),
		Page:     fields[len(fields)-1],
		Type:     citeType,
	}, true
}
