package api

import (
	"fmt"
	"html"
	"net/http"
)

// ScalarHandler serves the Scalar reference UI for the OpenAPI document at specURL.
func ScalarHandler(specURL, title, description string) http.Handler {
	title = html.EscapeString(title)
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<title>%s</title>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<meta name="description" content="%s" />
</head>
<body style="margin: 0">
	<script id="api-reference" data-url="%s"></script>
	<script>
		document.getElementById('api-reference').dataset.configuration = JSON.stringify({
			layout: 'classic',
			hideTestRequestButton: true,
			servers: [{ url: window.location.origin }]
		})
	</script>
	<script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`, title, html.EscapeString(description), html.EscapeString(specURL))

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	})
}
