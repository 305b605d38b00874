// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analytics

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder_RecordsInOrder(t *testing.T) {
	r := NewMemoryRecorder(10)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, Event{Type: EventEquationCreated, EquationID: "a", At: time.Now()}))
	require.NoError(t, r.Record(ctx, Event{Type: EventEquationViewed, EquationID: "a", At: time.Now()}))

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventEquationCreated, events[0].Type)
	assert.Equal(t, EventEquationViewed, events[1].Type)
	assert.Equal(t, 1, r.CountByType(EventEquationCreated))
}

func TestMemoryRecorder_EvictsOldest(t *testing.T) {
	r := NewMemoryRecorder(3)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(ctx, Event{Type: EventEquationCreated, EquationID: fmt.Sprintf("id-%d", i)}))
	}
	events := r.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "id-2", events[0].EquationID)
	assert.Equal(t, "id-4", events[2].EquationID)
}

func TestMemoryRecorder_ConcurrentRecording(t *testing.T) {
	r := NewMemoryRecorder(1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Record(ctx, Event{Type: EventStepValidated})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 500, r.CountByType(EventStepValidated))
}

func TestLogRecorder_NeverFails(t *testing.T) {
	r := NewLogRecorder(nil)
	assert.NoError(t, r.Record(context.Background(), Event{Type: EventErrorOccurred}))
}
