package transport

import "net/http"

// reasonPhrases overrides the standard reason phrases where the gateway's
// own table differs from net/http. The 304 entry is the gateway's, verbatim.
var reasonPhrases = map[int]string{
	304: "Pas de changement effectué.",
	413: "Request Entity Too Large",
	414: "Request-URI Too Long",
}

// ReasonPhrase maps an HTTP status code to the gateway's reason phrase. Used
// to synthesize a gateway error message when an error status arrives with an
// empty body.
func ReasonPhrase(code int) string {
	if phrase, ok := reasonPhrases[code]; ok {
		return phrase
	}
	if phrase := http.StatusText(code); phrase != "" {
		return phrase
	}
	return "Unknown Error"
}
