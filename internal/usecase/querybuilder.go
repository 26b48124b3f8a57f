package usecase

import (
	"net/url"
	"strings"

	"sitesearch/internal/domain"
)

const siteSegment = "+site%3A"

// componentUnescape restores the characters encodeURIComponent leaves alone
// but url.QueryEscape escapes.
var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s the way browsers encode a URI component.
func encodeComponent(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}

var googleFileTypes = map[domain.FileType][]string{
	domain.FilePDF:  {"pdf"},
	domain.FileDoc:  {"doc", "docx"},
	domain.FileXLS:  {"xls", "xlsx"},
	domain.FilePPT:  {"ppt", "pptx"},
	domain.FileImg:  {"jpg", "png", "gif"},
	domain.FileHTML: {"html", "htm"},
}

// googleFileTypeClause expands a category into a filetype disjunction.
// A single extension is not parenthesised.
func googleFileTypeClause(ft domain.FileType) string {
	exts, ok := googleFileTypes[ft]
	if !ok {
		return ""
	}
	parts := make([]string, len(exts))
	for i, ext := range exts {
		parts[i] = "filetype:" + ext
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func verbatimFileTypeClause(ft domain.FileType) string {
	if ft == domain.FileAny {
		return ""
	}
	return "filetype:" + string(ft)
}

// composeQuery applies exact-match quoting and then appends the file-type clause.
func composeQuery(query string, exactMatch bool, clause string) string {
	text := strings.TrimSpace(query)
	if exactMatch {
		text = `"` + text + `"`
	}
	if clause != "" {
		text += " " + clause
	}
	return text
}

func siteQuery(text, host string) string {
	return encodeComponent(text) + siteSegment + host
}

func buildGoogle(query, host string, tf domain.TimeFilter, ft domain.FileType, exact bool) string {
	u := "https://www.google.com/search?q=" + siteQuery(composeQuery(query, exact, googleFileTypeClause(ft)), host)
	switch tf {
	case domain.TimeDay, domain.TimeWeek, domain.TimeMonth, domain.TimeYear:
		u += "&tbs=qdr:" + string(tf)
	}
	return u
}

func buildDuckDuckGo(query, host string, tf domain.TimeFilter, ft domain.FileType, exact bool) string {
	u := "https://duckduckgo.com/?q=" + siteQuery(composeQuery(query, exact, verbatimFileTypeClause(ft)), host)
	switch tf {
	case domain.TimeDay, domain.TimeWeek, domain.TimeMonth, domain.TimeYear:
		u += "&df=" + string(tf)
	}
	return u
}

var bingTimeCodes = map[domain.TimeFilter]string{
	domain.TimeDay:   "1",
	domain.TimeWeek:  "2",
	domain.TimeMonth: "3",
	domain.TimeYear:  "4",
}

func buildBing(query, host string, tf domain.TimeFilter, ft domain.FileType, exact bool) string {
	u := "https://www.bing.com/search?q=" + siteQuery(composeQuery(query, exact, verbatimFileTypeClause(ft)), host)
	if code, ok := bingTimeCodes[tf]; ok {
		u += "&filters=ex1%3a%22ez" + code + "%22"
	}
	return u
}

func buildYahoo(query, host string, tf domain.TimeFilter, ft domain.FileType, exact bool) string {
	u := "https://search.yahoo.com/search?p=" + siteQuery(composeQuery(query, exact, verbatimFileTypeClause(ft)), host)
	switch tf {
	case domain.TimeDay, domain.TimeWeek, domain.TimeMonth, domain.TimeYear:
		u += "&age=1" + string(tf)
	}
	return u
}

// Baidu supports neither time nor file-type filtering.
func buildBaidu(query, host string, _ domain.TimeFilter, _ domain.FileType, exact bool) string {
	return "https://www.baidu.com/s?wd=" + siteQuery(composeQuery(query, exact, ""), host)
}

var engines = []domain.SearchEngineDescriptor{
	{ID: domain.EngineGoogle, Name: "Google", BuildURL: buildGoogle},
	{ID: domain.EngineDuckDuckGo, Name: "DuckDuckGo", BuildURL: buildDuckDuckGo},
	{ID: domain.EngineBing, Name: "Bing", BuildURL: buildBing},
	{ID: domain.EngineYahoo, Name: "Yahoo", BuildURL: buildYahoo},
	{ID: domain.EngineBaidu, Name: "Baidu", BuildURL: buildBaidu},
}

// Engines returns the supported engines in display order.
func Engines() []domain.SearchEngineDescriptor {
	out := make([]domain.SearchEngineDescriptor, len(engines))
	copy(out, engines)
	return out
}

// Descriptor returns the engine for id, or Google when id is unknown.
func Descriptor(id domain.EngineID) domain.SearchEngineDescriptor {
	for _, e := range engines {
		if e.ID == id {
			return e
		}
	}
	return engines[0]
}

// BuildSearchURL builds the site-restricted search URL on f.Engine.
// Callers guarantee a non-empty host and a non-blank query.
func BuildSearchURL(query, host string, f domain.SearchFilters) string {
	return Descriptor(f.Engine).BuildURL(query, host, f.Time, f.FileType, f.ExactMatch)
}
