// Package report builds the quarterly review page from completed tasks and calendar
// events, with a narrative written by a text generation model.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

// Quarter is a calendar quarter, N in 1..4.
type Quarter struct {
	Year int
	N    int
}

var quarterPattern = regexp.MustCompile(`^(\d{4})[Qq]([1-4])$`)

// ParseQuarter parses "2024Q1".
func ParseQuarter(s string) (Quarter, error) {
	m := quarterPattern.FindStringSubmatch(s)
	if m == nil {
		return Quarter{}, fmt.Errorf("invalid quarter %q, want e.g. 2024Q1", s)
	}
	year, _ := strconv.Atoi(m[1])
	n, _ := strconv.Atoi(m[2])
	return Quarter{Year: year, N: n}, nil
}

// QuarterOf returns the quarter containing d.
func QuarterOf(d model.Date) Quarter {
	return Quarter{Year: d.Year, N: (int(d.Month)-1)/3 + 1}
}

// Previous returns the quarter before q.
func (q Quarter) Previous() Quarter {
	if q.N == 1 {
		return Quarter{Year: q.Year - 1, N: 4}
	}
	return Quarter{Year: q.Year, N: q.N - 1}
}

// Start is the first day of the quarter.
func (q Quarter) Start() model.Date {
	return model.Date{Year: q.Year, Month: time.Month(3*(q.N-1) + 1), Day: 1}
}

// End is the last day of the quarter.
func (q Quarter) End() model.Date {
	next := model.Date{Year: q.Year, Month: time.Month(3*(q.N-1) + 1), Day: 1}
	if q.N == 4 {
		next = model.Date{Year: q.Year + 1, Month: time.January, Day: 1}
	} else {
		next.Month += 3
	}
	return next.AddDays(-1)
}

func (q Quarter) String() string {
	return fmt.Sprintf("%dQ%d", q.Year, q.N)
}

// Period is the human readable date range of the quarter.
func (q Quarter) Period() string {
	return fmt.Sprintf("%s 〜 %s", q.Start(), q.End())
}

// Title is the review page title.
func (q Quarter) Title() string {
	return fmt.Sprintf("%s 振り返りレポート (%s)", q, q.Period())
}
