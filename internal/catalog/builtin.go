package catalog

// Built-in catalog variants. These are configuration data: the session
// state machine works for any non-empty catalog, including ones loaded
// from a YAML file at runtime.

// IPhone is the standard 13-test battery for the native app.
func IPhone() *Catalog {
	return MustNew([]Definition{
		{
			ID:           "faceid",
			Name:         "Face ID",
			Description:  "Authenticate with Face ID to verify biometric hardware.",
			Category:     Category{Kind: KindBiometric},
			Verification: Tested,
		},
		{
			ID:           "display",
			Name:         "Display Quality",
			Description:  "Full-screen color panels will appear. Check each for dead pixels, discoloration, or backlight bleed. Tap to advance.",
			Category:     Category{Kind: KindDisplay},
			Verification: SelfReported,
		},
		{
			ID:           "front_cam",
			Name:         "Front Camera",
			Description:  "Check that the front camera shows a clear image.",
			Category:     Category{Kind: KindCamera, Camera: CameraFront},
			Verification: Tested,
		},
		{
			ID:           "rear_cam",
			Name:         "Rear Camera",
			Description:  "Check that the rear camera shows a clear image.",
			Category:     Category{Kind: KindCamera, Camera: CameraBack},
			Verification: Tested,
		},
		{
			ID:           "touch",
			Name:         "Touch Screen",
			Description:  "Touch every cell in the grid below.",
			Category:     Category{Kind: KindTouch},
			Verification: Tested,
		},
		{
			ID:           "mic",
			Name:         "Microphone",
			Description:  "A short audio clip will be recorded and played back.",
			Category:     Category{Kind: KindMicrophone},
			Verification: Tested,
		},
		{
			ID:           "speaker",
			Name:         "Speaker",
			Description:  "A test tone will play through the speaker.",
			Category:     Category{Kind: KindSpeaker},
			Verification: Tested,
		},
		{
			ID:           "wifi",
			Name:         "Wi-Fi",
			Description:  "Testing Wi-Fi connectivity...",
			Category:     Category{Kind: KindConnectivity, Connectivity: ConnectivityWiFi},
			Verification: Tested,
		},
		{
			ID:           "bluetooth",
			Name:         "Bluetooth",
			Description:  "Checking Bluetooth radio status...",
			Category:     Category{Kind: KindBluetooth},
			Verification: Tested,
		},
		{
			ID:           "cellular",
			Name:         "Cellular Signal",
			Description:  "Checking cellular connectivity...",
			Category:     Category{Kind: KindConnectivity, Connectivity: ConnectivityCellular},
			Verification: Tested,
		},
		{
			ID:           "gps",
			Name:         "GPS / Location",
			Description:  "Requesting location to verify GPS hardware...",
			Category:     Category{Kind: KindGeolocation},
			Verification: Tested,
		},
		{
			ID:           "accel_gyro",
			Name:         "Accelerometer / Gyroscope",
			Description:  "Tilt and rotate your device in all directions.",
			Category:     Category{Kind: KindMotion},
			Verification: Tested,
		},
		{
			ID:           "buttons",
			Name:         "Physical Buttons",
			Description:  "Test each physical button when prompted.",
			Category:     Category{Kind: KindButtons},
			Verification: SelfReported,
		},
	})
}

// IPhoneExtended is the 17-test battery: the standard set plus True Tone,
// proximity, vibration, and NFC checks added in later app builds.
func IPhoneExtended() *Catalog {
	defs := IPhone().Definitions()
	defs = append(defs,
		Definition{
			ID:                 "true_tone",
			Name:               "True Tone",
			Description:        "Toggle True Tone and confirm the display warmth shifts.",
			Category:           Category{Kind: KindDisplay},
			Verification:       SelfReported,
			AllowsNotSupported: true,
		},
		Definition{
			ID:           "proximity",
			Name:         "Proximity Sensor",
			Description:  "Cover the top of the screen and confirm it dims.",
			Category:     Category{Kind: KindManual},
			Verification: SelfReported,
		},
		Definition{
			ID:           "vibration",
			Name:         "Vibration",
			Description:  "A vibration pattern will play. Confirm you feel it.",
			Category:     Category{Kind: KindVibration},
			Verification: SelfReported,
		},
		Definition{
			ID:                 "nfc",
			Name:               "NFC",
			Description:        "Hold an NFC tag near the top edge of the device.",
			Category:           Category{Kind: KindNFC},
			Verification:       Tested,
			AllowsNotSupported: true,
		},
	)
	return MustNew(defs)
}

// Browser is the web-fallback battery: Bluetooth cannot be probed from a
// browser and cellular state is taken at the user's word.
func Browser() *Catalog {
	defs := make([]Definition, 0, 13)
	for _, d := range IPhone().Definitions() {
		switch d.ID {
		case "faceid":
			d.Verification = SelfReported
		case "bluetooth":
			d.Verification = Untestable
		case "cellular":
			d.Verification = SelfReported
		}
		defs = append(defs, d)
	}
	return MustNew(defs)
}

// Variant returns a built-in catalog by name.
func Variant(name string) (*Catalog, bool) {
	switch name {
	case "iphone", "":
		return IPhone(), true
	case "iphone_extended":
		return IPhoneExtended(), true
	case "browser":
		return Browser(), true
	}
	return nil, false
}
