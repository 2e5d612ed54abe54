package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReliabilityJSON(t *testing.T) {
	t.Run("no history renders null period", func(t *testing.T) {
		out, err := json.Marshal(Reliability{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":false,"period":null}`, string(out))
	})

	t.Run("period uses dotted dates", func(t *testing.T) {
		out, err := json.Marshal(Reliability{
			Status: true,
			Period: &Period{RegisteredAt: date(2000, 1, 1), UpdatedAt: date(2020, 1, 1)},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":true,"period":{"registered_at":"2000.01.01","updated_at":"2020.01.01"}}`, string(out))
	})

	t.Run("period decodes", func(t *testing.T) {
		var p Period
		require.NoError(t, json.Unmarshal([]byte(`{"registered_at":"2020.01.01","updated_at":"2020.05.01"}`), &p))
		assert.Equal(t, 121, p.Days())
		assert.Error(t, json.Unmarshal([]byte(`{"registered_at":"2020-01-01","updated_at":"2020.05.01"}`), &p))
	})
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2020, 1, 1), date(2020, 1, 1)))
	assert.Equal(t, 366, DaysBetween(date(2020, 1, 1), date(2021, 1, 1)))
	assert.Equal(t, 1, DaysBetween(time.Date(2020, 1, 1, 23, 0, 0, 0, time.UTC), time.Date(2020, 1, 2, 1, 0, 0, 0, time.UTC)))
}

func TestPersonKey(t *testing.T) {
	s := Submission{NameHash: "AA", BirthdayHash: "BB"}
	assert.Equal(t, "AABB", s.PersonKey())
}
