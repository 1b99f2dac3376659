package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAgeAroundBirthday checks that the age only increases on the birthday itself.
func TestAgeAroundBirthday(t *testing.T) {
	birthDate := NewDate(2000, time.May, 20)
	assert.Equal(t, 23, Age(birthDate, time.Date(2024, time.May, 19, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, Age(birthDate, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, Age(birthDate, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 23, Age(birthDate, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

// TestAgeLeapDay checks a birthday on February 29 in a non-leap year.
func TestAgeLeapDay(t *testing.T) {
	birthDate := NewDate(2004, time.February, 29)
	assert.Equal(t, 18, Age(birthDate, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 19, Age(birthDate, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

// TestDateJSON checks the wire format of a date and the accepted input formats.
func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(1969, time.March, 2))
	require.NoError(t, err)
	assert.Equal(t, `"1969-03-02"`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1969-03-02"`), &d))
	assert.Equal(t, NewDate(1969, time.March, 2), d)

	require.NoError(t, json.Unmarshal([]byte(`"1960-04-13T00:00:00Z"`), &d))
	assert.Equal(t, NewDate(1960, time.April, 13), d)

	assert.Error(t, json.Unmarshal([]byte(`"13/04/1960"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`19600413`), &d))
}

// TestContactInputNullBirthDate checks that a missing or null birth date stays nil so that the
// required check can catch it.
func TestContactInputNullBirthDate(t *testing.T) {
	var in ContactInput
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Ana", "birth_date": null}`), &in))
	assert.Nil(t, in.BirthDate)
}

// TestDateScan checks the source types that database drivers hand out for DATE columns.
func TestDateScan(t *testing.T) {
	expected := NewDate(1974, time.November, 29)
	sources := []any{
		time.Date(1974, time.November, 29, 0, 0, 0, 0, time.UTC),
		"1974-11-29",
		[]byte("1974-11-29"),
		"1974-11-29T00:00:00Z",
	}
	for _, src := range sources {
		var d Date
		require.NoError(t, d.Scan(src), "source: %v", src)
		assert.Equal(t, expected, d)
	}

	var d Date
	assert.Error(t, d.Scan(nil))
	assert.Error(t, d.Scan(42))

	value, err := expected.Value()
	require.NoError(t, err)
	assert.Equal(t, "1974-11-29", value)
}
