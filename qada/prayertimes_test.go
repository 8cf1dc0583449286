package qada_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/miqat/qada-engine/qada"
)

func at(hour, minute int) time.Time {
	return time.Date(2023, time.June, 1, hour, minute, 0, 0, time.UTC)
}

func TestCurrentPrayer_FixedWindows(t *testing.T) {
	schedule := qada.FixedSchedule{}

	cases := []struct {
		name string
		now  time.Time
		want qada.PrayerType
	}{
		{"midnight still belongs to last night's witr", at(0, 0), qada.PrayerWitr},
		{"just before fajr", at(5, 29), qada.PrayerWitr},
		{"fajr boundary is inclusive", at(5, 30), qada.PrayerFajr},
		{"mid morning", at(10, 0), qada.PrayerFajr},
		{"dhuhr", at(12, 30), qada.PrayerDhuhr},
		{"asr", at(15, 30), qada.PrayerAsr},
		{"just before maghrib", at(17, 59), qada.PrayerAsr},
		{"maghrib", at(18, 0), qada.PrayerMaghrib},
		{"isha", at(19, 30), qada.PrayerIsha},
		{"witr", at(20, 0), qada.PrayerWitr},
		{"late evening", at(23, 59), qada.PrayerWitr},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, qada.CurrentPrayer(schedule, tc.now, time.UTC))
		})
	}
}

func TestIsPrayerTimePast_IndependentOfLaterWindows(t *testing.T) {
	schedule := qada.FixedSchedule{}

	// At 16:00 the asr window has begun; fajr and dhuhr are long past and
	// stay past even though later windows have opened.
	now := at(16, 0)
	assert.True(t, qada.IsPrayerTimePast(schedule, qada.PrayerFajr, now, time.UTC))
	assert.True(t, qada.IsPrayerTimePast(schedule, qada.PrayerDhuhr, now, time.UTC))
	assert.True(t, qada.IsPrayerTimePast(schedule, qada.PrayerAsr, now, time.UTC))
	assert.False(t, qada.IsPrayerTimePast(schedule, qada.PrayerMaghrib, now, time.UTC))
	assert.False(t, qada.IsPrayerTimePast(schedule, qada.PrayerWitr, now, time.UTC))
}

func TestFixedSchedule_WindowsFollowZone(t *testing.T) {
	schedule := qada.FixedSchedule{}
	istanbul, _ := time.LoadLocation("Europe/Istanbul")

	windows := schedule.Windows(at(12, 0), istanbul)
	assert.Len(t, windows, 6)
	for _, w := range windows {
		assert.Equal(t, istanbul, w.Start.Location())
	}
	assert.Equal(t, qada.PrayerFajr, windows[0].Prayer)
	assert.Equal(t, qada.PrayerWitr, windows[5].Prayer)
}
