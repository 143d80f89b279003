package notion

// Schema names the task database properties.
type Schema struct {
	Title    string
	Project  string
	Sprint   string
	Due      string
	WorkDate string
	Status   string
	Tags     string
	EventID  string
}

// DefaultSchema matches the task database template. workDate overrides the work date
// property name when non-empty.
func DefaultSchema(workDate string) Schema {
	if workDate == "" {
		workDate = "作業日"
	}
	return Schema{
		Title:    "タスク名",
		Project:  "プロジェクト",
		Sprint:   "スプリント",
		Due:      "期限",
		WorkDate: workDate,
		Status:   "ステータス",
		Tags:     "タグ",
		EventID:  "GCal_Event_ID",
	}
}
