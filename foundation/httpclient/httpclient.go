// Package httpclient provides basic http functions
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// client shared for feed polling, with a timeout well under any sane polling
// cadence so a hung feed server cannot stall the loop
var client = &http.Client{Timeout: 30 * time.Second}

// GetBytes pulls bytes from url using a simple GET request
func GetBytes(url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	return io.ReadAll(resp.Body)
}
