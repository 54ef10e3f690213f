package a

import (
	"net/http"
	"strings"
)

func fetch() {
	_, _ = http.Get("http://example.com") // want "use apiclient instead of http.Get"

	_, _ = http.Post("http://example.com", "text/plain", strings.NewReader("")) // want "use apiclient instead of http.Post"

	_ = http.DefaultClient // want "use apiclient instead of http.DefaultClient"

	client := &http.Client{}
	_, _ = client.Get("http://example.com")
	_, _ = http.NewRequest(http.MethodGet, "http://example.com", nil)
}
