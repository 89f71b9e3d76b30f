package services

import "regexp"

// mediaIDPatterns are tried in order; the first capture group that matches wins.
var mediaIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/medias/([^/.]+)`),
	regexp.MustCompile(`/embed/iframe/([^?]+)`),
	regexp.MustCompile(`wistia\.com/medias/([^/.]+)`),
	regexp.MustCompile(`wistia\.net/embed/medias/([^/.]+)`),
}

// ExtractMediaID returns the media identifier embedded in a video URL.
func ExtractMediaID(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	for _, re := range mediaIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}
