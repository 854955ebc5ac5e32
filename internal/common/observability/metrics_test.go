package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilObservabilityIsSafe(t *testing.T) {
	var o *Observability

	o.RecordJobProcessed(context.Background(), "kyc.license.screen", "completed")
	o.RecordJobDuration(context.Background(), "kyc.license.screen", time.Second, "completed")

	called := false
	err := o.TrackCall(context.Background(), "places", "textsearch", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	o.Shutdown()
}

func TestTrackCall_ReturnsCallError(t *testing.T) {
	o := New("pos-onboarding-workers-test", "")
	defer o.Shutdown()

	boom := errors.New("upstream 503")
	err := o.TrackCall(context.Background(), "docai", "process", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
