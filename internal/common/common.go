package common

import (
	"fmt"
	"net/http"
)

// StatusError is returned by Get when the upstream answers outside the 2xx range.
type StatusError struct {
	Name string
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("error code %v returned from %v", e.Code, e.Name)
}

// Get issues req exactly once. A non-2xx response is closed and returned as a StatusError,
// otherwise the caller owns the response body.
func Get(client *http.Client, req *http.Request, name string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error on %v api request: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, StatusError{Name: name, Code: resp.StatusCode}
	}
	return resp, nil
}
