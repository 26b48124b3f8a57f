package domain

// MaxHistoryEntries bounds the recent-search log.
const MaxHistoryEntries = 20

// HistoryKey is the key-value store key holding the encoded history list.
const HistoryKey = "searchHistory"

// EngineID identifies one of the supported search engines.
type EngineID string

const (
	EngineGoogle     EngineID = "google"
	EngineDuckDuckGo EngineID = "duckduckgo"
	EngineBing       EngineID = "bing"
	EngineYahoo      EngineID = "yahoo"
	EngineBaidu      EngineID = "baidu"
)

// EngineIDs lists every engine in display order.
var EngineIDs = []EngineID{EngineGoogle, EngineDuckDuckGo, EngineBing, EngineYahoo, EngineBaidu}

// Valid reports whether id names a known engine.
func (id EngineID) Valid() bool {
	switch id {
	case EngineGoogle, EngineDuckDuckGo, EngineBing, EngineYahoo, EngineBaidu:
		return true
	}
	return false
}

// ParseEngine maps s to an EngineID, falling back to Google for unknown input.
func ParseEngine(s string) EngineID {
	id := EngineID(s)
	if id.Valid() {
		return id
	}
	return EngineGoogle
}

// TimeFilter restricts results to a recent window. The zero value means any time.
type TimeFilter string

const (
	TimeAny   TimeFilter = ""
	TimeDay   TimeFilter = "d"
	TimeWeek  TimeFilter = "w"
	TimeMonth TimeFilter = "m"
	TimeYear  TimeFilter = "y"
)

// TimeFilters lists every filter value in cycle order.
var TimeFilters = []TimeFilter{TimeAny, TimeDay, TimeWeek, TimeMonth, TimeYear}

// Valid reports whether f is a known filter, including TimeAny.
func (f TimeFilter) Valid() bool {
	switch f {
	case TimeAny, TimeDay, TimeWeek, TimeMonth, TimeYear:
		return true
	}
	return false
}

// ParseTimeFilter maps s to a TimeFilter; unknown input means any time.
func ParseTimeFilter(s string) TimeFilter {
	f := TimeFilter(s)
	if f.Valid() {
		return f
	}
	return TimeAny
}

// Label returns a short human label.
func (f TimeFilter) Label() string {
	switch f {
	case TimeDay:
		return "Past 24 hours"
	case TimeWeek:
		return "Past week"
	case TimeMonth:
		return "Past month"
	case TimeYear:
		return "Past year"
	default:
		return "Any time"
	}
}

// FileType restricts results to a document family. The zero value means any type.
type FileType string

const (
	FileAny  FileType = ""
	FilePDF  FileType = "pdf"
	FileDoc  FileType = "doc"
	FileXLS  FileType = "xls"
	FilePPT  FileType = "ppt"
	FileImg  FileType = "img"
	FileHTML FileType = "html"
)

// FileTypes lists every file type in cycle order.
var FileTypes = []FileType{FileAny, FilePDF, FileDoc, FileXLS, FilePPT, FileImg, FileHTML}

// Valid reports whether t is a known file type, including FileAny.
func (t FileType) Valid() bool {
	switch t {
	case FileAny, FilePDF, FileDoc, FileXLS, FilePPT, FileImg, FileHTML:
		return true
	}
	return false
}

// ParseFileType maps s to a FileType; unknown input means any type.
func ParseFileType(s string) FileType {
	t := FileType(s)
	if t.Valid() {
		return t
	}
	return FileAny
}

// Label returns a short human label.
func (t FileType) Label() string {
	switch t {
	case FilePDF:
		return "PDF"
	case FileDoc:
		return "Word"
	case FileXLS:
		return "Excel"
	case FilePPT:
		return "PowerPoint"
	case FileImg:
		return "Images"
	case FileHTML:
		return "HTML"
	default:
		return "Any type"
	}
}

// SearchFilters groups the optional refinements of a query.
type SearchFilters struct {
	Engine     EngineID
	Time       TimeFilter
	FileType   FileType
	ExactMatch bool
}

// IsZero reports whether no filter deviates from its default, given the default engine.
func (f SearchFilters) IsZero(defaultEngine EngineID) bool {
	engine := f.Engine
	if engine == "" {
		engine = defaultEngine
	}
	return engine == defaultEngine && f.Time == TimeAny && f.FileType == FileAny && !f.ExactMatch
}

// SearchHistoryEntry is one recorded search. Optional fields are omitted
// from the stored JSON when unset.
type SearchHistoryEntry struct {
	Domain       string     `json:"domain"`
	SearchTerm   string     `json:"searchTerm"`
	Timestamp    int64      `json:"timestamp"`
	SearchEngine EngineID   `json:"searchEngine,omitempty"`
	TimeFilter   TimeFilter `json:"timeFilter,omitempty"`
	FileType     FileType   `json:"fileType,omitempty"`
	ExactMatch   bool       `json:"exactMatch,omitempty"`
}

// Filters returns the entry's refinements, resolving an absent engine to defaultEngine.
func (e SearchHistoryEntry) Filters(defaultEngine EngineID) SearchFilters {
	engine := e.SearchEngine
	if engine == "" {
		engine = defaultEngine
	}
	return SearchFilters{
		Engine:     engine,
		Time:       e.TimeFilter,
		FileType:   e.FileType,
		ExactMatch: e.ExactMatch,
	}
}

// SearchEngineDescriptor names an engine and carries its URL builder.
type SearchEngineDescriptor struct {
	ID   EngineID
	Name string
	// BuildURL assembles the final URL from the raw query and hostname.
	BuildURL func(query, domain string, timeFilter TimeFilter, fileType FileType, exactMatch bool) string
}
