package report

import (
	"fmt"
	"sort"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

// maxParagraph is the longest text Notion accepts in one rich text object.
const maxParagraph = 2000

func heading2(text string) model.Block { return model.Block{Kind: model.BlockHeading2, Text: text} }
func heading3(text string) model.Block { return model.Block{Kind: model.BlockHeading3, Text: text} }
func bullet(text string) model.Block   { return model.Block{Kind: model.BlockBullet, Text: text} }

// Blocks lays out the review page: calendar activity, completed tasks by project,
// then the generated narrative.
func Blocks(d Data, review string) []model.Block {
	var blocks []model.Block
	blocks = append(blocks, calendarBlocks(d)...)
	blocks = append(blocks, taskBlocks(d.Tasks)...)
	blocks = append(blocks, reviewBlocks(review)...)
	return blocks
}

func calendarBlocks(d Data) []model.Block {
	blocks := []model.Block{heading2(fmt.Sprintf("📅 Googleカレンダー実績 (合計: %d件)", d.EventCount()))}
	for _, c := range d.Calendars {
		blocks = append(blocks, heading3(fmt.Sprintf("Calendar: %s (%d件)", c.CalendarID, len(c.Events))))
		if len(c.Events) == 0 {
			blocks = append(blocks, bullet("(なし)"))
			continue
		}
		for _, ev := range c.Events {
			blocks = append(blocks, bullet(eventLine(ev)))
		}
	}
	return blocks
}

func taskBlocks(tasks []model.Task) []model.Block {
	blocks := []model.Block{heading2(fmt.Sprintf("✅ 完了タスク実績 (プロジェクト別, 合計: %d件)", len(tasks)))}

	byProject := map[string][]string{}
	var projects []string
	for _, t := range tasks {
		name := projectName(t)
		if _, ok := byProject[name]; !ok {
			projects = append(projects, name)
		}
		byProject[name] = append(byProject[name], t.Title)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		// unassigned tasks go last
		if (projects[i] == unassignedProject) != (projects[j] == unassignedProject) {
			return projects[j] == unassignedProject
		}
		return projects[i] < projects[j]
	})

	for _, name := range projects {
		titles := byProject[name]
		blocks = append(blocks, heading3(fmt.Sprintf("Project: %s (%d件)", name, len(titles))))
		for _, title := range titles {
			blocks = append(blocks, bullet(title))
		}
	}
	return blocks
}

func reviewBlocks(review string) []model.Block {
	blocks := []model.Block{heading2("🤖 四半期の振り返り (AI分析)")}
	for _, chunk := range splitRunes(review, maxParagraph) {
		blocks = append(blocks, model.Block{Kind: model.BlockParagraph, Text: chunk})
	}
	return blocks
}

// splitRunes cuts s into pieces of at most n characters.
func splitRunes(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for start := 0; start < len(runes); start += n {
		end := min(start+n, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}
