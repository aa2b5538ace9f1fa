package dto

type EvaluateInput struct {
	UploadID string
}

type SessionOutput struct {
	SessionID   string
	DeviceID    string
	Start       int
	End         int
	Readings    int
	DurationDay float64
	MaxDays     float64
	MaxKnown    bool
	EndedEarly  bool
}

type DeviceLimitOutput struct {
	Pattern string
	MaxDays float64
}

type DeviceLookupOutput struct {
	DeviceID string
	MaxDays  float64
	Known    bool
}
