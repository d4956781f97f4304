// Package catalog defines the ordered list of hardware checks a diagnostic
// run walks through. A catalog is fixed at build time: order defines
// traversal and progress semantics, and ids are the join key for outcomes.
package catalog

import (
	"fmt"
	"strings"
)

// CategoryKind discriminates which collector the presentation layer must
// invoke for a test. The session core treats it as opaque.
type CategoryKind string

const (
	KindBiometric    CategoryKind = "biometric"
	KindDisplay      CategoryKind = "display"
	KindCamera       CategoryKind = "camera"
	KindTouch        CategoryKind = "touch"
	KindMicrophone   CategoryKind = "microphone"
	KindSpeaker      CategoryKind = "speaker"
	KindConnectivity CategoryKind = "connectivity"
	KindBluetooth    CategoryKind = "bluetooth"
	KindGeolocation  CategoryKind = "geolocation"
	KindMotion       CategoryKind = "motion"
	KindVibration    CategoryKind = "vibration"
	KindButtons      CategoryKind = "buttons"
	KindNFC          CategoryKind = "nfc"
	KindManual       CategoryKind = "manual"
)

// CameraPosition selects which camera a camera-category test exercises.
type CameraPosition string

const (
	CameraFront CameraPosition = "front"
	CameraBack  CameraPosition = "back"
)

// ConnectivityKind selects which radio a connectivity-category test exercises.
type ConnectivityKind string

const (
	ConnectivityWiFi     ConnectivityKind = "wifi"
	ConnectivityCellular ConnectivityKind = "cellular"
)

// Category is a closed tagged union over test kinds. Only camera tests carry
// a position and only connectivity tests carry a radio kind.
type Category struct {
	Kind         CategoryKind     `yaml:"kind"`
	Camera       CameraPosition   `yaml:"camera,omitempty"`
	Connectivity ConnectivityKind `yaml:"connectivity,omitempty"`
}

func (c Category) validate() error {
	switch c.Kind {
	case KindCamera:
		if c.Camera != CameraFront && c.Camera != CameraBack {
			return fmt.Errorf("camera category requires position front or back, got %q", c.Camera)
		}
	case KindConnectivity:
		if c.Connectivity != ConnectivityWiFi && c.Connectivity != ConnectivityCellular {
			return fmt.Errorf("connectivity category requires kind wifi or cellular, got %q", c.Connectivity)
		}
	case KindBiometric, KindDisplay, KindTouch, KindMicrophone, KindSpeaker,
		KindBluetooth, KindGeolocation, KindMotion, KindVibration, KindButtons,
		KindNFC, KindManual:
	default:
		return fmt.Errorf("unknown category kind %q", c.Kind)
	}
	return nil
}

// VerificationMode documents how a verdict was obtained. It is copied into
// each outcome at record time and carried through to the report unchanged.
type VerificationMode string

const (
	Tested       VerificationMode = "tested"
	SelfReported VerificationMode = "self_reported"
	Untestable   VerificationMode = "untestable"
)

func (v VerificationMode) validate() error {
	switch v {
	case Tested, SelfReported, Untestable:
		return nil
	}
	return fmt.Errorf("unknown verification mode %q", v)
}

// Definition is an immutable catalog entry.
type Definition struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Category     Category         `yaml:"category"`
	Verification VerificationMode `yaml:"verification"`

	// AllowsNotSupported marks tests where a "not applicable on this
	// hardware" verdict is legal (e.g. NFC on older models).
	AllowsNotSupported bool `yaml:"allows_not_supported"`
}

// Catalog is a fixed, ordered, non-empty sequence of definitions with
// unique ids. Construct via New; the zero value is invalid.
type Catalog struct {
	defs []Definition
	byID map[string]int
}

// New validates the definitions and returns an immutable catalog.
func New(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one test")
	}
	byID := make(map[string]int, len(defs))
	for i, d := range defs {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			return nil, fmt.Errorf("test at index %d has empty id", i)
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate test id %q", id)
		}
		if err := d.Category.validate(); err != nil {
			return nil, fmt.Errorf("test %q: %w", id, err)
		}
		if err := d.Verification.validate(); err != nil {
			return nil, fmt.Errorf("test %q: %w", id, err)
		}
		byID[id] = i
	}
	c := &Catalog{defs: make([]Definition, len(defs)), byID: byID}
	copy(c.defs, defs)
	return c, nil
}

// MustNew panics on invalid definitions. Used for the built-in catalogs,
// which are validated by tests.
func MustNew(defs []Definition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of tests.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// At returns the definition at index i. Panics if out of range, matching
// slice semantics; callers index via a session cursor that is kept in range.
func (c *Catalog) At(i int) Definition {
	return c.defs[i]
}

// Lookup returns the definition for the given id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Index returns the position of the given id, or -1 if absent.
func (c *Catalog) Index(id string) int {
	i, ok := c.byID[id]
	if !ok {
		return -1
	}
	return i
}

// Definitions returns a copy of the ordered definitions.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}
