package proxy

import "strconv"

// NetworkError represents a transport-level failure reaching the proxy or
// reading its response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	msg := "network error fetching " + e.URL
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamStatusError represents a non-2xx status relayed from the upstream
// storefront. Body holds the raw response, which some storefronts use for
// error diagnostics.
type UpstreamStatusError struct {
	Code int
	URL  string
	Body []byte
}

func (e *UpstreamStatusError) Error() string {
	return "upstream status " + strconv.Itoa(e.Code) + " fetching " + e.URL
}
