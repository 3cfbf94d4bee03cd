package output

// JSON output shapes shared by the commands. Kept here so the JSON
// surface is defined in one place and stays stable across commands.

// SplitFile is one written (or skipped) destination in a split report.
type SplitFile struct {
	Path        string `json:"path"`
	Created     bool   `json:"created"`
	Unchanged   bool   `json:"unchanged"`
	LinesBefore int    `json:"lines_before"`
	LinesAfter  int    `json:"lines_after"`
}

// SplitPromotion records a visibility upgrade applied during a split.
type SplitPromotion struct {
	Segment   string `json:"segment"`
	Symbol    string `json:"symbol"`
	WasPolicy string `json:"was_policy"`
}

// SplitReport is the JSON form of one document's split outcome.
type SplitReport struct {
	RunID           string           `json:"run_id,omitempty"`
	Source          string           `json:"source"`
	SourceHash      string           `json:"source_hash,omitempty"`
	DryRun          bool             `json:"dry_run"`
	Files           []SplitFile      `json:"files,omitempty"`
	Promotions      []SplitPromotion `json:"promotions,omitempty"`
	ManualFollowUps []string         `json:"manual_follow_ups,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// SplitOutput is the top-level JSON document for the split command.
type SplitOutput struct {
	Reports []SplitReport `json:"reports"`
}

// InspectMarker is one resolved boundary.
type InspectMarker struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

// InspectSegment is one would-be segment range.
type InspectSegment struct {
	Name       string `json:"name"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Dest       string `json:"dest"`
	Visibility string `json:"visibility"`
}

// InspectOutput is the top-level JSON document for the inspect command.
type InspectOutput struct {
	Source   string           `json:"source"`
	Lines    int              `json:"lines"`
	Markers  []InspectMarker  `json:"markers"`
	Segments []InspectSegment `json:"segments"`
}

// GraphEdge is one cross-segment reference.
type GraphEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Symbol string `json:"symbol"`
}

// GraphOutput is the top-level JSON document for the graph command.
type GraphOutput struct {
	Source string      `json:"source"`
	Edges  []GraphEdge `json:"edges"`
}

// CleanFile is one cleaned path.
type CleanFile struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Written bool   `json:"written"`
}

// CleanRule reports one class-rename rule's hit count.
type CleanRule struct {
	From string `json:"from"`
	To   string `json:"to"`
	Hits int    `json:"hits"`
}

// CleanOutput is the top-level JSON document for the clean command.
type CleanOutput struct {
	Files []CleanFile `json:"files"`
	Rules []CleanRule `json:"rules,omitempty"`
}

// TaxonomyOutput summarizes a taxonomy rebuild.
type TaxonomyOutput struct {
	Output   string `json:"output"`
	Broad    int    `json:"broad"`
	Narrow   int    `json:"narrow"`
	Detailed int    `json:"detailed"`
}
