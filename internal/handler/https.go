package handler

import "net/http"

// ForceHTTPS redirects plain-http requests that arrived through a proxy
// (X-Forwarded-Proto, the header Heroku/Render set) to their https
// equivalent. Direct requests without the header pass through untouched.
func ForceHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "http" {
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}
