package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {

	type test struct {
		from Status
		on   Event
		to   Status
		err  bool
	}

	tests := map[string]test{
		"await":               {from: NotStarted, on: Await, to: AwaitingData},
		"start":               {from: NotStarted, on: Start, to: Training},
		"start-after-await":   {from: AwaitingData, on: Start, to: Training},
		"fail-while-awaiting": {from: AwaitingData, on: Fail, to: Error},
		"succeed":             {from: Training, on: Succeed, to: Finished},
		"fail":                {from: Training, on: Fail, to: Error},
		"start-twice":         {from: Training, on: Start, err: true},
		"succeed-not-started": {from: NotStarted, on: Succeed, err: true},
		"fail-not-started":    {from: NotStarted, on: Fail, err: true},
		"restart-finished":    {from: Finished, on: Start, to: Training},
		"restart-error":       {from: Error, on: Start, to: Training},
		"succeed-finished":    {from: Finished, on: Succeed, err: true},
		"fail-error":          {from: Error, on: Fail, err: true},
		"await-training":      {from: Training, on: Await, err: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Transition(tt.from, tt.on)
			if tt.err {
				assert.True(t, errors.Is(err, IllegalTransitionErr))
				assert.Equal(t, tt.from, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, s)
		})
	}
}

func TestTransition_ResetFromAny(t *testing.T) {
	for _, s := range []Status{NotStarted, AwaitingData, Training, Error, Finished} {
		next, err := Transition(s, Reset)
		require.NoError(t, err)
		assert.Equal(t, NotStarted, next, s.String())
	}
}

func TestStatus_Names(t *testing.T) {
	assert.Equal(t, "NOT_STARTED", NotStarted.String())
	assert.Equal(t, "FINISHED", Finished.String())
	assert.Equal(t, "Training in progress", Training.Description())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestState_Verbose(t *testing.T) {
	now := time.Date(2022, 3, 4, 10, 11, 12, 0, time.UTC)
	later := now.Add(time.Minute)

	type test struct {
		events []Event
		fields map[string]string
	}

	tests := map[string]test{
		"not-started": {
			fields: map[string]string{
				StatusKey: "Training has not started yet",
			},
		},
		"awaiting": {
			events: []Event{Await},
			fields: map[string]string{
				StatusKey: "Awaiting data to be preprocessed",
			},
		},
		"training": {
			events: []Event{Await, Start},
			fields: map[string]string{
				StatusKey: "Training in progress",
				StartKey:  "2022-03-04 10:11:12",
			},
		},
		"error": {
			events: []Event{Start, Fail},
			fields: map[string]string{
				StatusKey: "An error has occurred during training",
				StartKey:  "2022-03-04 10:11:12",
				ErrorKey:  "2022-03-04 10:12:12",
			},
		},
		"finished": {
			events: []Event{Start, Succeed},
			fields: map[string]string{
				StatusKey: "Training has finished",
				StartKey:  "2022-03-04 10:11:12",
				FinishKey: "2022-03-04 10:12:12",
			},
		},
		"reset": {
			events: []Event{Start, Succeed, Reset},
			fields: map[string]string{
				StatusKey: "Training has not started yet",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var s State
			var err error
			for _, e := range tt.events {
				at := now
				if e != Start && e != Await {
					at = later
				}
				s, err = s.Apply(e, at)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.fields, s.Verbose())
		})
	}
}

func TestState_ApplyLeavesReceiver(t *testing.T) {
	var s State
	next, err := s.Apply(Start, time.Now())
	require.NoError(t, err)
	assert.Equal(t, NotStarted, s.Status)
	assert.Nil(t, s.Started)
	assert.Equal(t, Training, next.Status)
	assert.NotNil(t, next.Started)

	_, err = next.Apply(Start, time.Now())
	assert.True(t, errors.Is(err, IllegalTransitionErr))
}

func TestState_RestartClearsOutcome(t *testing.T) {
	at := time.Date(2022, 3, 4, 10, 11, 12, 0, time.UTC)
	s, err := State{}.Apply(Start, at)
	require.NoError(t, err)
	s, err = s.Apply(Fail, at)
	require.NoError(t, err)
	s.Err = errors.New("fit")

	s, err = s.Apply(Start, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Training, s.Status)
	assert.Nil(t, s.Failed)
	assert.Nil(t, s.Err)
	assert.Equal(t, "2022-03-04 10:12:12", s.Started.Format(TimeFormat))
}
