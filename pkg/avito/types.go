package avito

// StatsField names a metric the statistics endpoint can report.
type StatsField string

// Metrics requested for every statistics query.
const (
	FieldUniqViews     StatsField = "uniqViews"
	FieldUniqContacts  StatsField = "uniqContacts"
	FieldUniqFavorites StatsField = "uniqFavorites"
)

// Grouping selects the aggregation period for statistics rows.
type Grouping string

// Supported aggregation periods.
const (
	GroupByDay   Grouping = "day"
	GroupByWeek  Grouping = "week"
	GroupByMonth Grouping = "month"
)

// tokenResponse is the body of a successful client-credentials exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Item is one listing owned by the account.
type Item struct {
	ID int64 `json:"id"`
}

// itemsResponse is the body of the item listing endpoint. Resources is a
// pointer so a body without the key can be told apart from an empty list.
type itemsResponse struct {
	Resources *[]Item `json:"resources"`
}

// statsRequest is the body sent to the per-account statistics endpoint.
type statsRequest struct {
	DateFrom       string       `json:"dateFrom"`
	DateTo         string       `json:"dateTo"`
	Fields         []StatsField `json:"fields"`
	ItemIDs        []int64      `json:"itemIds"`
	PeriodGrouping Grouping     `json:"periodGrouping"`
}

// statsResponse is the body of the statistics endpoint.
type statsResponse struct {
	Result struct {
		Items []ItemStats `json:"items"`
	} `json:"result"`
}

// ItemStats carries the per-period metrics of one listing.
type ItemStats struct {
	ItemID int64       `json:"itemId"`
	Stats  []PeriodRow `json:"stats"`
}

// PeriodRow is one aggregation period of one listing.
type PeriodRow struct {
	Date          string `json:"date"`
	UniqViews     int    `json:"uniqViews"`
	UniqContacts  int    `json:"uniqContacts"`
	UniqFavorites int    `json:"uniqFavorites"`
}

// Report is the last completed autoload run of an account.
type Report struct {
	Status       string        `json:"status"`
	StartedAt    string        `json:"started_at"`
	FinishedAt   string        `json:"finished_at"`
	Events       []ReportEvent `json:"events"`
	SectionStats SectionStats  `json:"section_stats"`
}

// ReportEvent is one diagnostic emitted during an autoload run.
type ReportEvent struct {
	Code        int    `json:"code"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SectionStats summarizes processed listings by outcome section.
type SectionStats struct {
	Count    int       `json:"count"`
	Sections []Section `json:"sections"`
}

// Section is one outcome bucket of an autoload run.
type Section struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}
