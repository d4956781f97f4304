// Package verifier holds the clients for the two network-facing
// collaborators: the lens-quality analysis service and the IMEI/TAC lookup
// service. The session core never calls these; the presentation layer does,
// then records the resolved verdict synchronously. Failures here are always
// recoverable: callers degrade to a manual verdict and keep the run
// progressable. No retries: one attempt per user action.
package verifier

import (
	"context"

	"github.com/basket/clearvue/internal/catalog"
)

// Verdict is the normalized result of an external analysis.
type Verdict struct {
	Pass        bool   `json:"pass"`
	Explanation string `json:"explanation"`
}

// LensVerifier analyzes a captured photo for physical lens damage.
type LensVerifier interface {
	AnalyzeLens(ctx context.Context, jpegBase64 string, position catalog.CameraPosition) (Verdict, error)
}

// TACLookup resolves an IMEI to device identity via the TAC database.
type TACLookup interface {
	LookupIMEI(ctx context.Context, imei string) (TACResult, error)
}

// TACResult is the IMEI/TAC service response.
type TACResult struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	TAC     string `json:"tac,omitempty"`
	Make    string `json:"make,omitempty"`
	Model   string `json:"model,omitempty"`
	Storage string `json:"storage,omitempty"`
}

// DeviceLabel formats make/model/storage into a display string, or ""
// when the lookup carried no identity.
func (r TACResult) DeviceLabel() string {
	if r.Make == "" || r.Model == "" {
		return ""
	}
	label := r.Make + " " + r.Model
	if r.Storage != "" {
		label += " " + r.Storage
	}
	return label
}
