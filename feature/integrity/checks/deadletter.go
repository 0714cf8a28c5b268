package checks

import (
	"context"
	"path"
)

// SampleSize caps the number of keys listed in a backlog report.
const SampleSize = 20

// Lister lists archived webhook deliveries, oldest first.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// BacklogReport describes the dead-letter archive.
type BacklogReport struct {
	Count  int      `json:"count"`
	Oldest string   `json:"oldest,omitempty"`
	Sample []string `json:"sample"`
}

// CheckDeadLetters reports how many deliveries wait for a replay.
func CheckDeadLetters(ctx context.Context, letters Lister) (*BacklogReport, error) {
	keys, err := letters.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &BacklogReport{Count: len(keys), Sample: []string{}}
	if len(keys) == 0 {
		return report, nil
	}
	report.Oldest = path.Base(keys[0])

	n := len(keys)
	if n > SampleSize {
		n = SampleSize
	}
	report.Sample = append(report.Sample, keys[:n]...)
	return report, nil
}
