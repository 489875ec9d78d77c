package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/osse101/idlegarden/internal/authority"
)

// simulatedAd stands in for an ad network: it waits out the ad length,
// or reports an abandoned view.
type simulatedAd struct {
	duration time.Duration
	abandon  bool
	out      io.Writer
}

var _ authority.AdOracle = simulatedAd{}

func newSimulatedAd(duration time.Duration, abandon bool, out io.Writer) simulatedAd {
	if duration < 0 {
		duration = 0
	}
	return simulatedAd{duration: duration, abandon: abandon, out: out}
}

// ShowRewarded implements authority.AdOracle
func (a simulatedAd) ShowRewarded(ctx context.Context, placement string) (bool, int64, error) {
	if a.abandon {
		return false, 0, nil
	}
	fmt.Fprintf(a.out, MsgAdPlaying+"\n", displayName(placement))

	if a.duration > 0 {
		timer := time.NewTimer(a.duration)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, 0, ctx.Err()
		case <-timer.C:
		}
	}
	return true, a.duration.Milliseconds(), nil
}
