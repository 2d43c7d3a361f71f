package models

// UploadOutcome is the result of the most recent upload attempt, as shown to the operator.
type UploadOutcome struct {
	Filename  string `json:"filename"`
	Truncated bool   `json:"truncated"`
}

func (o UploadOutcome) String() string {
	if o.Truncated {
		return "Truncated"
	}
	if o.Filename == "" {
		return "unknown file"
	}
	return o.Filename
}
