package services

import "strings"

const defaultCourseIcon = "📚"

// courseIcons is matched in order; the first keyword contained in the course
// name wins.
var courseIcons = []struct {
	keyword string
	icon    string
}{
	{"apptitude", "🧮"},
	{"aptitude", "🧮"},
	{"dsa", "💻"},
	{"java", "☕"},
	{"mern", "⚛️"},
	{"projects", "🚀"},
	{"practice", "📝"},
	{"docker", "🐳"},
	{"cicd", "⚙️"},
	{"web", "🌐"},
	{"react", "⚛️"},
	{"node", "🟢"},
	{"mongodb", "🍃"},
	{"express", "🚂"},
}

// CourseIcon assigns an icon to a course by case-insensitive keyword match.
func CourseIcon(courseName string) string {
	lower := strings.ToLower(courseName)
	for _, entry := range courseIcons {
		if strings.Contains(lower, entry.keyword) {
			return entry.icon
		}
	}
	return defaultCourseIcon
}
