package myhttp

import (
	"fmt"
	"net/http"
	"os"
)

// HostnameWithScheme reconstructs the externally reachable base URL of the
// server handling this request. Behind the App Engine proxy TLS is
// terminated upstream, so prefer the configured site origin when present.
func HostnameWithScheme(r *http.Request) string {
	origin := os.Getenv("SITE_ORIGIN")
	if origin != "" {
		return origin
	}

	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GuessHostnameWithScheme derives the external base URL outside of a
// request context, for registering push subscriptions at startup.
func GuessHostnameWithScheme() string {
	origin := os.Getenv("SITE_ORIGIN")
	if origin != "" {
		return origin
	}

	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if project != "" {
		return fmt.Sprintf("https://%s.appspot.com", project)
	}

	return "http://localhost:8080"
}
