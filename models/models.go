package models

// Lecture represents a single playable video inside a section
type Lecture struct {
	ID       string  `json:"id"` // e.g., "lec-001"; positional, not stable across rescans
	Title    string  `json:"title"`
	Duration string  `json:"duration"`
	URL      string  `json:"url"`
	MediaID  *string `json:"media_id"`
}

// Section groups the lectures of one course sub-folder
type Section struct {
	Name     string    `json:"name"`
	Lectures []Lecture `json:"lectures"`
}

// Course represents a top-level course folder
type Course struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	Sections []Section `json:"sections"`
}

// CoursesResponse is returned by GET /api/courses
type CoursesResponse struct {
	Courses []Course `json:"courses"`
}

// StatsResponse is returned by GET /api/stats
type StatsResponse struct {
	TotalCourses  int `json:"totalCourses"`
	TotalLectures int `json:"totalLectures"`
}

// TitleResponse is returned by GET /api/get-title/{media_id}
type TitleResponse struct {
	Title  string `json:"title"`
	Cached bool   `json:"cached"`
}

// FetchTitlesRequest is the body of POST /api/fetch-titles
type FetchTitlesRequest struct {
	URLs        []string `json:"urls"`
	CourseName  string   `json:"course_name"`
	SectionName string   `json:"section_name"`
}

// BulkFetchRequest is the body of POST /api/bulk-fetch
type BulkFetchRequest struct {
	LinksText  string `json:"links_text"`
	CourseName string `json:"course_name"`
}

// TitleResult is one resolved URL. MediaID is nil when no identifier could be extracted.
type TitleResult struct {
	URL     string  `json:"url"`
	MediaID *string `json:"media_id"`
	Title   string  `json:"title"`
	Cached  bool    `json:"cached"`
}

// FetchTitlesResponse is returned by POST /api/fetch-titles
type FetchTitlesResponse struct {
	Titles []TitleResult `json:"titles"`
}

// BulkFetchResponse is returned by POST /api/bulk-fetch
type BulkFetchResponse struct {
	Titles []TitleResult `json:"titles"`
	Total  int           `json:"total"`
	New    int           `json:"new"`
	Cached int           `json:"cached"`
}

// RefreshResponse is returned by GET /api/refresh-cache
type RefreshResponse struct {
	Message  string `json:"message"`
	OldCount int    `json:"old_count"`
	NewCount int    `json:"new_count"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status       string `json:"status"`
	CoursesDir   string `json:"courses_dir"`
	TitlesCached int    `json:"titles_cached"`
}

// IndexResponse is the API manifest returned by GET /
type IndexResponse struct {
	Message    string            `json:"message"`
	Version    string            `json:"version"`
	Endpoints  map[string]string `json:"endpoints"`
	CacheStats CacheStats        `json:"cache_stats"`
}

// CacheStats summarizes the title cache
type CacheStats struct {
	TitlesCached int `json:"titles_cached"`
}

// ErrorResponse is the body of every JSON error
type ErrorResponse struct {
	Error string `json:"error"`
}

// StringPtr returns a pointer to s, used for nullable JSON fields.
func StringPtr(s string) *string {
	return &s
}
