package qada_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqat/qada-engine/qada"
)

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"ten whole days", date(2015, time.January, 1), date(2015, time.January, 11), 10},
		{"same instant", date(2015, time.January, 1), date(2015, time.January, 1), 0},
		{"partial day floors down", date(2015, time.January, 1), date(2015, time.January, 2).Add(-time.Hour), 0},
		{"across a year boundary", date(2014, time.December, 31), date(2015, time.January, 2), 2},
		{"negative span floors toward minus infinity", date(2015, time.January, 2).Add(-time.Hour), date(2015, time.January, 1), -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, qada.DaysBetween(tc.from, tc.to))
		})
	}
}

func TestDateKey_UsesExplicitZone(t *testing.T) {
	// GIVEN: 2023-06-01 23:30 UTC, which is already June 2 in Istanbul
	istanbul, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	instant := time.Date(2023, time.June, 1, 23, 30, 0, 0, time.UTC)

	// THEN: the key follows the configured zone, not the instant's zone
	assert.Equal(t, "2023-06-01", qada.DateKey(instant, time.UTC))
	assert.Equal(t, "2023-06-02", qada.DateKey(instant, istanbul))
}

func TestParseDateKey_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	parsed, err := qada.ParseDateKey("2023-06-02", loc)
	require.NoError(t, err)
	assert.Equal(t, "2023-06-02", qada.DateKey(parsed, loc))

	_, err = qada.ParseDateKey("02/06/2023", loc)
	assert.Error(t, err)
}

func TestResolveLocation(t *testing.T) {
	loc, err := qada.ResolveLocation("Europe/Istanbul")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Istanbul", loc.String())

	_, err = qada.ResolveLocation("")
	assert.ErrorIs(t, err, qada.ErrMissingTimezone)

	_, err = qada.ResolveLocation("Nowhere/Nothing")
	assert.Error(t, err)
}

func TestBulughDate(t *testing.T) {
	birth := date(2000, time.January, 1)

	t.Run("civil years by default", func(t *testing.T) {
		p := qada.PersonalData{BirthDate: birth, BulughAge: 15}
		assert.Equal(t, date(2015, time.January, 1), qada.BulughDate(p))
	})

	t.Run("lunar years are shorter", func(t *testing.T) {
		// 15 lunar years = floor(15 x 354.367) = 5315 days, about 164 days
		// short of 15 civil years
		p := qada.PersonalData{BirthDate: birth, BulughAge: 15, UseLunarBulugh: true}
		got := qada.BulughDate(p)
		assert.Equal(t, birth.AddDate(0, 0, 5315), got)
		assert.True(t, got.Before(date(2015, time.January, 1)))
	})

	t.Run("explicit date wins over derivation", func(t *testing.T) {
		explicit := date(2014, time.July, 9)
		p := qada.PersonalData{BirthDate: birth, BulughAge: 15, BulughDate: explicit}
		assert.Equal(t, explicit, qada.BulughDate(p))
	})
}

func TestMonthsIn(t *testing.T) {
	assert.Equal(t, 0, qada.MonthsIn(29))
	assert.Equal(t, 1, qada.MonthsIn(30))
	assert.Equal(t, 3, qada.MonthsIn(90))
	assert.Equal(t, 0, qada.MonthsIn(-5))
}
