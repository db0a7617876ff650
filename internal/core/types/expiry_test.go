package types

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiry_Compare(t *testing.T) {
	jan := MustExpiry("2024-01-01")
	mar := MustExpiry("2024-03-01")
	none := NoExpiry()

	assert.Equal(t, -1, jan.Compare(mar))
	assert.Equal(t, 1, mar.Compare(jan))
	assert.Equal(t, 0, jan.Compare(MustExpiry("2024-01-01")))
	assert.Equal(t, -1, mar.Compare(none), "dated sorts before undated")
	assert.Equal(t, 1, none.Compare(jan))
	assert.Equal(t, 0, none.Compare(NoExpiry()))
}

func TestExpiry_SortsUndatedLast(t *testing.T) {
	list := []Expiry{NoExpiry(), MustExpiry("2025-06-01"), MustExpiry("2024-06-01")}
	sort.Slice(list, func(i, j int) bool { return list[i].Compare(list[j]) < 0 })

	assert.Equal(t, "2024-06-01", list[0].String())
	assert.Equal(t, "2025-06-01", list[1].String())
	assert.False(t, list[2].IsSet())
}

func TestExpiry_JSON(t *testing.T) {
	var payload struct {
		A Expiry `json:"a"`
		B Expiry `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-02-29","b":null}`), &payload))
	assert.Equal(t, "2024-02-29", payload.A.String())
	assert.False(t, payload.B.IsSet())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-02-29","b":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a":"29/02/2024"}`), &payload))
}

func TestExpiry_Scan(t *testing.T) {
	var e Expiry
	require.NoError(t, e.Scan(nil))
	assert.False(t, e.IsSet())

	require.NoError(t, e.Scan(time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-10", e.String())

	v, err := e.Value()
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, v)

	assert.Error(t, e.Scan(42))
}

func TestExpiry_ExpiredAt(t *testing.T) {
	e := MustExpiry("2024-05-10")
	assert.True(t, e.ExpiredAt(time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)))
	assert.False(t, e.ExpiredAt(time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, NoExpiry().ExpiredAt(time.Now()))
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(MustMoney("250.00"), MustMoney("12.5"))
	assert.True(t, got.Equal(MustMoney("31.25")), got.String())
	assert.True(t, LineTotal(3, MustMoney("9.99")).Equal(MustMoney("29.97")))
	assert.True(t, ValidPercent(MustMoney("100")))
	assert.False(t, ValidPercent(MustMoney("100.01")))
	assert.False(t, ValidPercent(MustMoney("-1")))
}
