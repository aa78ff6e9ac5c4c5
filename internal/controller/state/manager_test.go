package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StateLifecycle(t *testing.T) {
	m := NewManager()
	const user int64 = 42

	assert.Equal(t, StateNone, m.GetState(user))

	m.SetState(user, StateAwaitingPhone)
	m.SetData(user, KeyDate, "2024-06-10")
	m.SetData(user, KeyServiceIndex, 2)

	assert.Equal(t, StateAwaitingPhone, m.GetState(user))
	assert.Equal(t, "2024-06-10", m.GetString(user, KeyDate))

	idx, ok := m.GetInt(user, KeyServiceIndex)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = m.GetInt(user, KeyDate)
	assert.False(t, ok, "string value must not read as int")

	m.SetState(user, StateNone)
	assert.Equal(t, StateNone, m.GetState(user))
	assert.Empty(t, m.GetString(user, KeyDate), "StateNone drops dialog data")
}

func TestManager_DataWithoutStateKeepsNone(t *testing.T) {
	m := NewManager()

	m.SetData(7, KeyStartTime, "09:30")

	assert.Equal(t, StateNone, m.GetState(7))
	assert.Equal(t, "09:30", m.GetString(7, KeyStartTime))
}

func TestManager_GetAllDataReturnsCopy(t *testing.T) {
	m := NewManager()
	m.SetState(1, StateAwaitingRecurring)
	m.SetData(1, KeyDate, "2024-06-10")

	data := m.GetAllData(1)
	data[KeyDate] = "changed"

	assert.Equal(t, "2024-06-10", m.GetString(1, KeyDate))
	assert.Nil(t, m.GetAllData(99))
}

func TestManager_ClearState(t *testing.T) {
	m := NewManager()
	m.SetState(1, StateAwaitingPhone)
	m.SetState(2, StateAwaitingPhone)

	m.ClearState(1)

	assert.Equal(t, StateNone, m.GetState(1))
	assert.Equal(t, StateAwaitingPhone, m.GetState(2))
}
