package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay/core"
)

func drain(t *testing.T, fragments <-chan string, errs <-chan error) ([]string, error) {
	t.Helper()
	var out []string
	var streamErr error
	for fragments != nil || errs != nil {
		select {
		case f, ok := <-fragments:
			if !ok {
				fragments = nil
				continue
			}
			out = append(out, f)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			streamErr = err
		case <-time.After(2 * time.Second):
			t.Fatal("stream did not complete")
		}
	}
	return out, streamErr
}

func TestScripted_ReplaysFragmentsInOrder(t *testing.T) {
	g := NewScripted([]string{"one ", "two ", "three"})
	fragments, errs := g.Stream(context.Background(), core.GenerateRequest{})
	out, err := drain(t, fragments, errs)
	require.NoError(t, err)
	assert.Equal(t, []string{"one ", "two ", "three"}, out)
}

func TestScripted_AppendsStopMarker(t *testing.T) {
	g := NewScripted([]string{"done"}, func(o *ScriptedOptions) {
		o.StopMarker = "STOP_STREAMING"
	})
	fragments, errs := g.Stream(context.Background(), core.GenerateRequest{})
	out, err := drain(t, fragments, errs)
	require.NoError(t, err)
	assert.Equal(t, []string{"done", "STOP_STREAMING"}, out)
}

func TestScripted_ContextCancellation(t *testing.T) {
	g := NewScripted([]string{"a", "b", "c"}, func(o *ScriptedOptions) {
		o.Delay = time.Hour
	})
	ctx, cancel := context.WithCancel(context.Background())
	fragments, errs := g.Stream(ctx, core.GenerateRequest{})
	cancel()

	_, err := drain(t, fragments, errs)
	assert.True(t, errors.Is(err, context.Canceled))
}
