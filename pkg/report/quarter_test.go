package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

func TestPreviousQuarter(t *testing.T) {
	tests := []struct {
		today string
		want  Quarter
	}{
		{"2024-05-15", Quarter{2024, 1}},
		{"2024-04-01", Quarter{2024, 1}},
		{"2024-03-31", Quarter{2023, 4}},
		{"2024-01-01", Quarter{2023, 4}},
		{"2024-12-31", Quarter{2024, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			assert.Equal(t, tt.want, QuarterOf(model.MustDate(tt.today)).Previous())
		})
	}
}

func TestQuarterBounds(t *testing.T) {
	q1 := Quarter{2024, 1}
	assert.Equal(t, model.MustDate("2024-01-01"), q1.Start())
	assert.Equal(t, model.MustDate("2024-03-31"), q1.End())

	q4 := Quarter{2023, 4}
	assert.Equal(t, model.MustDate("2023-10-01"), q4.Start())
	assert.Equal(t, model.MustDate("2023-12-31"), q4.End())

	assert.Equal(t, model.MustDate("2024-06-30"), Quarter{2024, 2}.End())
}

func TestQuarterTitle(t *testing.T) {
	assert.Equal(t, "2024Q1 振り返りレポート (2024-01-01 〜 2024-03-31)", Quarter{2024, 1}.Title())
}

func TestParseQuarter(t *testing.T) {
	q, err := ParseQuarter("2024Q3")
	require.NoError(t, err)
	assert.Equal(t, Quarter{2024, 3}, q)

	q, err = ParseQuarter("2023q4")
	require.NoError(t, err)
	assert.Equal(t, Quarter{2023, 4}, q)

	for _, bad := range []string{"", "2024Q5", "2024-Q1", "24Q1"} {
		_, err := ParseQuarter(bad)
		assert.Error(t, err, bad)
	}
}
