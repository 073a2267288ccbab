package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumsValid(t *testing.T) {
	assert.True(t, ProjectInProgress.Valid())
	assert.False(t, ProjectStatus("A_FAIRE").Valid())
	assert.True(t, TaskTodo.Valid())
	assert.False(t, TaskStatus("DONE").Valid())
	assert.True(t, ProjectPriorityHigh.Valid())
	assert.False(t, ProjectPriority("ELEVEE").Valid())
	assert.True(t, TaskPriorityHigh.Valid())
	assert.False(t, TaskPriority("HAUTE").Valid())
}

func TestStatusRankOrder(t *testing.T) {
	assert.Less(t, ProjectInProgress.Rank(), ProjectOnHold.Rank())
	assert.Less(t, ProjectOnHold.Rank(), ProjectDone.Rank())

	assert.Less(t, TaskTodo.Rank(), TaskInProgress.Rank())
	assert.Less(t, TaskInProgress.Rank(), TaskOnHold.Rank())
	assert.Less(t, TaskOnHold.Rank(), TaskDone.Rank())
}

func TestProjectPatchDistinguishesNullFromAbsent(t *testing.T) {
	var absent ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &absent))
	assert.False(t, absent.Description.Set)
	assert.False(t, absent.Empty())

	var null ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &null))
	assert.True(t, null.Description.Set)
	assert.Nil(t, null.Description.Value)

	var value ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":"notes"}`), &value))
	require.NotNil(t, value.Description.Value)
	assert.Equal(t, "notes", *value.Description.Value)

	var empty ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.Empty())
}

func TestTaskPatchDueDate(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":"2024-06-01"}`), &p))
	require.True(t, p.DueDate.Set)
	require.NotNil(t, p.DueDate.Value)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *p.DueDate.Value)

	var cleared TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":""}`), &cleared))
	assert.True(t, cleared.DueDate.Set)
	assert.Nil(t, cleared.DueDate.Value)

	var bad TaskPatch
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate":"next week"}`), &bad))
}

func TestParseDateLayouts(t *testing.T) {
	for _, in := range []string{"2024-06-01T10:00:00Z", "2024-06-01T10:00:00.5+02:00", "2024-06-01T10:00", "2024-06-01"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		require.NotNil(t, got, in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}
}

func TestUserJSONHidesPassword(t *testing.T) {
	out, err := json.Marshal(User{ID: "abcde", Email: "a@b.c", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
	assert.Contains(t, string(out), `"isUser":false`)
}

func TestListFilterZero(t *testing.T) {
	assert.True(t, ListFilter{}.Zero())
	assert.True(t, ListFilter{Sort: SortStatus}.Zero())
	assert.False(t, ListFilter{Search: "x"}.Zero())
}
