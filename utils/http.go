// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the sync worker and any other outbound calls.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
