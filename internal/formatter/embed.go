package formatter

import "regexp"

const youtubeEmbedBase = "https://www.youtube.com/embed/"

var youtubeID = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// EmbedURL converts a watch or short-link YouTube URL into an embeddable player URL.
//
// URLs without an extractable video id are returned unchanged.
func EmbedURL(url string) string {
	m := youtubeID.FindStringSubmatch(url)
	if len(m) < 2 || m[1] == "" {
		return url
	}
	return youtubeEmbedBase + m[1]
}

// VideoID returns the YouTube video id in url, if any.
func VideoID(url string) (string, bool) {
	m := youtubeID.FindStringSubmatch(url)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}
