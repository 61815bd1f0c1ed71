package respond

import (
	"regexp"
)

var (
	// Connection-string credentials (postgres://, redis://, ...). Fetch and
	// repository errors often embed the full DSN.
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)

	// Secret-looking query parameters in fetched URLs. Metadata fetch errors
	// carry the target URL verbatim, tokens included.
	secretParamPattern = regexp.MustCompile(`([?&](?:token|key|secret|password|api_key|access_token)=)[^&:\s"]+`)
)

// SanitizeError returns the error message with credentials masked so it is
// safe to include in an HTTP response body or a log line.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = secretParamPattern.ReplaceAllString(msg, "$1****")
	return msg
}
