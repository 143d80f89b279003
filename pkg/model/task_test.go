package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedTitle(t *testing.T) {
	wd := MustDate("2024-05-01")
	task := Task{Title: "設計", Project: "Foo", WorkDate: &wd, Status: StatusInProgress}
	assert.Equal(t, "設計【Foo】", task.ExpectedTitle())

	task.Status = StatusOnHold
	assert.Equal(t, "【中止】設計【Foo】", task.ExpectedTitle())

	task.Status = StatusInProgress
	task.WorkDate = nil
	assert.Equal(t, "【中止】設計【Foo】", task.ExpectedTitle())

	task.Project = ""
	assert.Equal(t, "【中止】設計", task.ExpectedTitle())
}

func TestStatusLabelsParse(t *testing.T) {
	labels := DefaultStatusLabels()
	assert.Equal(t, StatusNotStarted, labels.Parse("未着手"))
	assert.Equal(t, StatusInProgress, labels.Parse("進行中"))
	assert.Equal(t, StatusDone, labels.Parse("完了"))
	assert.Equal(t, StatusOnHold, labels.Parse("保留中"))
	assert.Equal(t, StatusOther, labels.Parse("反応待ち"))
	assert.Equal(t, StatusOther, labels.Parse(""))
	assert.Equal(t, "on-hold", StatusOnHold.String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-31T09:00:00.000+09:00")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.December, Day: 31}, d)

	_, err = ParseDate("31/12/2025")
	assert.Error(t, err)

	assert.Equal(t, "2026-01-01", d.AddDays(1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.After(d))
}

func TestDateInZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 15:30 UTC is already the next day in Tokyo.
	ts := time.Date(2024, 4, 30, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, MustDate("2024-05-01"), DateIn(ts, tokyo))
	assert.Equal(t, MustDate("2024-04-30"), DateIn(ts, time.UTC))
}

func TestSameDate(t *testing.T) {
	a := MustDate("2024-05-01")
	b := MustDate("2024-05-01")
	c := MustDate("2024-05-02")
	assert.True(t, SameDate(nil, nil))
	assert.True(t, SameDate(&a, &b))
	assert.False(t, SameDate(&a, &c))
	assert.False(t, SameDate(&a, nil))
}
