package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxProfileBody = 1 << 20

// FetchJSON performs a bearer GET and decodes the JSON body into out.
// Transport failures, non-2xx and malformed JSON all map to ErrUpstreamProfile.
func FetchJSON(ctx context.Context, hc *http.Client, endpoint, accessToken string, out any) error {
	if accessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrUpstreamProfile)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamProfile, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamProfile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProfileBody))
		return fmt.Errorf("%w: status %d", ErrUpstreamProfile, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstreamProfile, err)
	}
	return nil
}
