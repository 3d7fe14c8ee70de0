package locations

import (
	"regexp"
	"strings"
)

// Operator-entered text reaches the public API verbatim, so strip the usual
// stored-XSS vectors before anything else sees it.
var (
	scriptTagPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	iframeTagPattern = regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe\s*>`)
	jsURIPattern     = regexp.MustCompile(`(?i)javascript:`)
	eventAttrPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

func sanitizeString(s string) string {
	s = scriptTagPattern.ReplaceAllString(s, "")
	s = iframeTagPattern.ReplaceAllString(s, "")
	s = jsURIPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
