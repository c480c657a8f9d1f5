package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectExtension(t *testing.T) {
	t.Parallel()

	ext, ok := DetectExtension([]byte("%PDF-1.4 fake pdf content"))
	require.True(t, ok)
	require.Equal(t, ".pdf", ext)

	ext, ok = DetectExtension([]byte("<html><body>an opinion</body></html>"))
	require.True(t, ok)
	require.Equal(t, ".html", ext)

	ext, ok = DetectExtension([]byte("ID3\x03\x00\x00\x00\x00\x00\x00 fake mp3"))
	require.True(t, ok)
	require.Equal(t, ".mp3", ext)

	// Raw binary sniffs as application/octet-stream, which has no mapping.
	_, ok = DetectExtension([]byte{0x00, 0x01, 0x02, 0x03})
	require.False(t, ok)
}

func TestAudioExtension(t *testing.T) {
	t.Parallel()

	// Sniffable mp3 wins regardless of the URL.
	got := AudioExtension([]byte("ID3\x03\x00\x00\x00\x00\x00\x00 fake mp3"), "https://court.example/arg.wpd")
	require.Equal(t, ".mp3", got)

	// Unrecognized bytes fall back to the URL extension, lower-cased.
	got = AudioExtension([]byte{0x00, 0x01}, "https://court.example/files/Argument.WMA?session=1")
	require.Equal(t, ".wma", got)

	// Sniffed-but-unaccepted audio types also fall back to the URL.
	got = AudioExtension([]byte("RIFF\x00\x00\x00\x00WAVEfmt "), "https://court.example/arg.ram")
	require.Equal(t, ".ram", got)
}

func TestURLExtension(t *testing.T) {
	t.Parallel()
	require.Equal(t, ".pdf", URLExtension("https://court.example/opinions/12-345.PDF"))
	require.Equal(t, ".mp3", URLExtension("https://court.example/a/b.mp3?download=1"))
	require.Equal(t, "", URLExtension("https://court.example/opinions/12-345"))
}

func TestTrunc(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short name", Trunc("short name", 80))

	// Cuts at the last word boundary that fits.
	got := Trunc("united states of america v. extremely long corporate defendant name", 30)
	require.LessOrEqual(t, len([]rune(got)), 30)
	require.False(t, strings.HasSuffix(got, " "))
	require.Equal(t, "united states of america v.", got)

	// A single unbroken token is cut hard at the budget.
	require.Equal(t, strings.Repeat("a", 10), Trunc(strings.Repeat("a", 25), 10))
}

func TestFileName(t *testing.T) {
	t.Parallel()
	got := FileName("Lawrence v. Texas", 80, ".pdf")
	require.Equal(t, "lawrence v. texas.pdf", got)
}

func TestParseCitation(t *testing.T) {
	t.Parallel()

	cite, ok := ParseCitation("539 U.S. 558", CitationTypePrimary)
	require.True(t, ok)
	require.Equal(t, 539, cite.Volume)
	require.Equal(t, "U.S.", cite.Reporter)
	require.Equal(t, "558", cite.Page)
	require.Equal(t, CitationTypePrimary, cite.Type)

	// Multi-word reporters keep everything between volume and page.
	cite, ok = ParseCitation("12 F. Supp. 2d 345", CitationTypeParallel)
	require.True(t, ok)
	require.Equal(t, 12, cite.Volume)
	require.Equal(t, "F. Supp. 2d", cite.Reporter)
	require.Equal(t, "345", cite.Page)

	_, ok = ParseCitation("Slip Opinion", CitationTypePrimary)
	require.False(t, ok)

	_, ok = ParseCitation("Vol U.S. 558", CitationTypePrimary)
	require.False(t, ok)
}

func TestCourtKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "ca9", CourtKey("opinions.united_states.federal.ca9_u"))
	require.Equal(t, "ca1", CourtKey("oral_arguments.united_states.federal.ca1"))
	require.Equal(t, "tex", CourtKey("tex"))
}
