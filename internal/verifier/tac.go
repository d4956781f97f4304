package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTACTimeout = 10 * time.Second

// TACClient calls the IMEI/TAC lookup endpoint. Callers pre-validate the
// serial with imei.Valid before attempting a lookup, and accept the IMEI
// locally if the call fails; the lookup never blocks report completion.
type TACClient struct {
	endpoint string
	client   *http.Client
}

// NewTACClient builds a client for the given endpoint.
func NewTACClient(endpoint string, timeout time.Duration) *TACClient {
	if timeout <= 0 {
		timeout = defaultTACTimeout
	}
	return &TACClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type tacRequest struct {
	IMEI string `json:"imei"`
}

// LookupIMEI resolves the serial against the TAC database.
func (t *TACClient) LookupIMEI(ctx context.Context, imei string) (TACResult, error) {
	body, err := json.Marshal(tacRequest{IMEI: imei})
	if err != nil {
		return TACResult{}, fmt.Errorf("marshal tac request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return TACResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return TACResult{}, fmt.Errorf("tac lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return TACResult{}, fmt.Errorf("tac service returned %d: %s", resp.StatusCode, string(snippet))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return TACResult{}, fmt.Errorf("read tac response: %w", err)
	}

	var result TACResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return TACResult{}, fmt.Errorf("parse tac response: %w", err)
	}
	return result, nil
}
