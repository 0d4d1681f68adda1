package model

// Acknowledgements is the report written to disk. Both slices are always
// non-nil so they serialise as JSON arrays, never null.
type Acknowledgements struct {
	Packages     []PackageAcknowledgement `json:"packages"`
	Contributors []Contributor            `json:"contributors"`
}

// NewAcknowledgements copies packages and contributors into a new report.
func NewAcknowledgements(packages []PackageAcknowledgement, contributors []Contributor) *Acknowledgements {
	ack := &Acknowledgements{
		Packages:     make([]PackageAcknowledgement, len(packages)),
		Contributors: make([]Contributor, 0, len(contributors)),
	}
	copy(ack.Packages, packages)
	for _, c := range contributors {
		ack.Contributors = append(ack.Contributors, c.WithoutEmail())
	}
	return ack
}
