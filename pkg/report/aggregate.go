package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

const (
	unassignedProject = "未分類"
	untitled          = "タイトルなし"
)

// CalendarEvents holds the events read from one calendar.
type CalendarEvents struct {
	CalendarID string
	Events     []model.CalendarEvent
}

// Data is everything collected for one quarter.
type Data struct {
	Quarter   Quarter
	Tasks     []model.Task
	Calendars []CalendarEvents
}

// EventCount is the number of events across all calendars.
func (d Data) EventCount() int {
	n := 0
	for _, c := range d.Calendars {
		n += len(c.Events)
	}
	return n
}

// Empty reports whether there is nothing to review.
func (d Data) Empty() bool {
	return len(d.Tasks) == 0 && d.EventCount() == 0
}

// Count is one row of an aggregate.
type Count struct {
	Name string
	N    int
}

// Stats aggregates the quarter's activity.
type Stats struct {
	Projects  []Count
	Tags      []Count
	Calendars []Count
}

// Aggregate counts tasks per project and per tag and events per calendar. Rows are
// ordered by count, then name.
func Aggregate(d Data) Stats {
	projects := map[string]int{}
	tags := map[string]int{}
	for _, t := range d.Tasks {
		projects[projectName(t)]++
		for _, tag := range t.Tags {
			tags[tag]++
		}
	}

	var s Stats
	s.Projects = sortCounts(projects)
	s.Tags = sortCounts(tags)
	for _, c := range d.Calendars {
		s.Calendars = append(s.Calendars, Count{Name: c.CalendarID, N: len(c.Events)})
	}
	return s
}

func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func projectName(t model.Task) string {
	if t.Project == "" {
		return unassignedProject
	}
	return t.Project
}

func eventLine(ev model.CalendarEvent) string {
	title := ev.Title
	if title == "" {
		title = untitled
	}
	date := "----------"
	if ev.StartDate != nil {
		date = ev.StartDate.String()
	}
	return fmt.Sprintf("[%s] %s", date, title)
}

// FormatInput renders the aggregate and the raw titles as the model's input.
func FormatInput(d Data, s Stats) string {
	var b strings.Builder

	b.WriteString("【集計】\n")
	fmt.Fprintf(&b, "完了タスク: %d件 / カレンダー予定: %d件\n", len(d.Tasks), d.EventCount())
	writeCounts(&b, "プロジェクト別", s.Projects)
	writeCounts(&b, "タグ別", s.Tags)
	writeCounts(&b, "カレンダー別", s.Calendars)

	b.WriteString("\n【完了タスク】\n")
	for _, t := range d.Tasks {
		fmt.Fprintf(&b, "- %s (Project: %s)\n", t.Title, projectName(t))
	}

	b.WriteString("\n【カレンダー予定】\n")
	for _, c := range d.Calendars {
		fmt.Fprintf(&b, "Source: %s\n", c.CalendarID)
		for _, ev := range c.Events {
			fmt.Fprintf(&b, "- %s\n", eventLine(ev))
		}
	}
	return b.String()
}

func writeCounts(b *strings.Builder, label string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %d", c.Name, c.N))
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(parts, ", "))
}

// Prompt asks for a factual quarterly report over input.
func Prompt(period, input string) string {
	return fmt.Sprintf(`あなたは客観的なデータ分析官です。
以下のデータは、%sの活動記録（完了タスクとカレンダーのイベント）です。
このデータを元に、四半期の活動報告レポートを作成してください。

## 指示
- トーン: 冷静、客観的、簡潔。感情的な表現は不要です。事実を淡々と記述してください。
- 構成: 以下の観点で事実に基づいた分析を行ってください。
    1. プロジェクト別の進捗: 完了件数、傾向、特筆すべき成果。
    2. カレンダー実績: 予定の件数と傾向。
    3. 全体総括: 四半期の総評と次の四半期に向けた示唆。

## 入力データ
%s`, period, input)
}
