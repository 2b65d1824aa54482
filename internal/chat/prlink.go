package chat

import "regexp"

// PR-link shapes, one per supported hosting provider, scanned in priority
// order. Only the first hit is extracted even if a message contains several.
var prPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://\S+/[\w.\-]+/[\w.\-]+/pull/\d+`),             // GitHub
	regexp.MustCompile(`https?://\S+/[\w.\-]+/[\w.\-]+/-/merge_requests/\d+`), // GitLab
	regexp.MustCompile(`https?://\S+/[\w.\-]+/[\w.\-]+/pull-requests/\d+`),    // Bitbucket
}

// ExtractPRLink returns the first pull-request URL found in text, if any.
func ExtractPRLink(text string) (string, bool) {
	for _, p := range prPatterns {
		if m := p.FindString(text); m != "" {
			return m, true
		}
	}
	return "", false
}
