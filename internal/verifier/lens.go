package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/basket/clearvue/internal/catalog"
)

const (
	defaultLensTimeout = 30 * time.Second

	// maxLensPayload caps the base64 image size; the service rejects
	// anything near 10 MiB, so fail fast before uploading.
	maxLensPayload = 10 << 20
)

// lensResponseSchema validates the service's JSON shape before we trust it.
// A malformed body is a verifier failure, never a verdict.
const lensResponseSchema = `{
	"type": "object",
	"required": ["pass", "explanation"],
	"properties": {
		"pass": {"type": "boolean"},
		"explanation": {"type": "string"}
	}
}`

// LensClient calls the lens-quality analysis endpoint.
type LensClient struct {
	endpoint string
	client   *http.Client
	schema   *jsonschema.Schema
}

// NewLensClient builds a client for the given endpoint. A zero timeout uses
// the 30s default observed in the app.
func NewLensClient(endpoint string, timeout time.Duration) (*LensClient, error) {
	if timeout <= 0 {
		timeout = defaultLensTimeout
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(lensResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal lens response schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("lens.json", doc); err != nil {
		return nil, fmt.Errorf("add lens schema resource: %w", err)
	}
	schema, err := c.Compile("lens.json")
	if err != nil {
		return nil, fmt.Errorf("compile lens schema: %w", err)
	}
	return &LensClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		schema:   schema,
	}, nil
}

type lensRequest struct {
	Image          string `json:"image"`
	CameraPosition string `json:"camera_position"`
}

// AnalyzeLens submits a base64 JPEG for lens-damage analysis. Non-200
// responses and malformed JSON are errors; the caller falls back to a
// manual verdict tagged AI-unavailable.
func (l *LensClient) AnalyzeLens(ctx context.Context, jpegBase64 string, position catalog.CameraPosition) (Verdict, error) {
	if len(jpegBase64) > maxLensPayload {
		return Verdict{}, fmt.Errorf("image payload %d bytes exceeds %d byte limit", len(jpegBase64), maxLensPayload)
	}
	body, err := json.Marshal(lensRequest{Image: jpegBase64, CameraPosition: string(position)})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal lens request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("lens analysis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Verdict{}, fmt.Errorf("lens service returned %d: %s", resp.StatusCode, string(snippet))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Verdict{}, fmt.Errorf("read lens response: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Verdict{}, fmt.Errorf("parse lens response: %w", err)
	}
	if err := l.schema.Validate(doc); err != nil {
		return Verdict{}, fmt.Errorf("lens response failed schema validation: %w", err)
	}

	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return Verdict{}, fmt.Errorf("decode lens response: %w", err)
	}
	return v, nil
}
