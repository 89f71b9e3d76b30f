package services

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"coursevault-backend/logging"
	"coursevault-backend/models"
	"coursevault-backend/utils"
)

const (
	linksFileName       = "links.txt"
	playlistExt         = ".m3u8"
	fallbackSectionName = "Lectures"
	unknownDuration     = "00:00"
)

// ErrCourseNotFound is returned when no course has the requested id.
var ErrCourseNotFound = errors.New("course not found")

// TitleLookup is the read-only view of the title cache used while building
// the course tree.
type TitleLookup interface {
	Get(mediaID string) (string, bool)
}

// CourseService builds the course tree from the courses directory
type CourseService struct {
	root   string
	titles TitleLookup
	logger *slog.Logger
}

// NewCourseService creates a new course service
func NewCourseService(root string, titles TitleLookup, logger *slog.Logger) *CourseService {
	return &CourseService{
		root:   root,
		titles: titles,
		logger: logging.NewComponentLogger(logger, "course_service"),
	}
}

// Root returns the courses directory.
func (s *CourseService) Root() string {
	return s.root
}

// Courses walks the courses directory and returns every course that has at
// least one non-empty section. It never triggers remote title lookups.
func (s *CourseService) Courses() []models.Course {
	courses := []models.Course{}

	if !utils.DirExists(s.root) {
		s.logger.Warn("courses directory not found", slog.String("path", s.root))
		return courses
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn("failed to read courses directory",
			slog.String("path", s.root),
			logging.Error(err))
		return courses
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		course := s.buildCourse(entry.Name())
		if len(course.Sections) > 0 {
			courses = append(courses, course)
		}
	}

	s.logger.Debug("built course tree", slog.Int("courses", len(courses)))
	return courses
}

// Course returns the course with the given id.
func (s *CourseService) Course(id string) (models.Course, error) {
	for _, course := range s.Courses() {
		if course.ID == id {
			return course, nil
		}
	}
	return models.Course{}, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
}

// Stats counts courses and lectures in the current tree.
func (s *CourseService) Stats() models.StatsResponse {
	courses := s.Courses()
	stats := models.StatsResponse{TotalCourses: len(courses)}
	for _, course := range courses {
		for _, section := range course.Sections {
			stats.TotalLectures += len(section.Lectures)
		}
	}
	return stats
}

func (s *CourseService) buildCourse(dirName string) models.Course {
	course := models.Course{
		ID:       CourseID(dirName),
		Name:     dirName,
		Icon:     CourseIcon(dirName),
		Sections: []models.Section{},
	}
	courseDir := filepath.Join(s.root, dirName)

	entries, err := os.ReadDir(courseDir)
	if err != nil {
		s.logger.Warn("failed to read course directory",
			slog.String("path", courseDir),
			logging.Error(err))
		return course
	}

	hasSubdirs := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		hasSubdirs = true
		section := s.buildSection(course.ID, dirName, entry.Name())
		if len(section.Lectures) > 0 {
			course.Sections = append(course.Sections, section)
		}
	}

	if !hasSubdirs {
		linksPath := filepath.Join(courseDir, linksFileName)
		if utils.FileExists(linksPath) {
			lectures := s.parseLinksFile(linksPath)
			if len(lectures) > 0 {
				course.Sections = append(course.Sections, models.Section{
					Name:     fallbackSectionName,
					Lectures: lectures,
				})
			}
		}
	}

	return course
}

func (s *CourseService) buildSection(courseID, courseDirName, sectionDirName string) models.Section {
	section := models.Section{Name: sectionDirName, Lectures: []models.Lecture{}}
	sectionDir := filepath.Join(s.root, courseDirName, sectionDirName)

	linksPath := filepath.Join(sectionDir, linksFileName)
	if utils.FileExists(linksPath) {
		section.Lectures = append(section.Lectures, s.parseLinksFile(linksPath)...)
	}

	playlists, err := utils.FindFiles(sectionDir, "*"+playlistExt)
	if err != nil {
		s.logger.Warn("failed to list section media",
			slog.String("path", sectionDir),
			logging.Error(err))
		return section
	}

	sectionSlug := strings.ReplaceAll(strings.ToLower(sectionDirName), " ", "-")
	for _, playlist := range playlists {
		fileName := filepath.Base(playlist)
		mediaID := strings.TrimSuffix(fileName, playlistExt)

		title, ok := s.titles.Get(mediaID)
		if !ok {
			title = humanizeStem(mediaID)
		}

		section.Lectures = append(section.Lectures, models.Lecture{
			ID:       fmt.Sprintf("%s-%s-%d", courseID, sectionSlug, len(section.Lectures)+1),
			Title:    title,
			Duration: unknownDuration,
			URL:      courseFileURL(courseDirName, sectionDirName, fileName),
			MediaID:  models.StringPtr(mediaID),
		})
	}

	return section
}

// parseLinksFile reads one URL per line, optionally prefixed with "Title|".
// Lecture ids are positional within the file.
func (s *CourseService) parseLinksFile(path string) []models.Lecture {
	lectures := []models.Lecture{}

	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("failed to open links file", slog.String("path", path), logging.Error(err))
		return lectures
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 1
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !(strings.HasPrefix(line, "http") || strings.Contains(line, "wistia")) {
			continue
		}

		link, title := line, ""
		if before, after, found := strings.Cut(line, "|"); found {
			title = strings.TrimSpace(before)
			link = strings.TrimSpace(after)
		}

		lecture := models.Lecture{
			ID:       fmt.Sprintf("lec-%03d", n),
			Duration: unknownDuration,
			URL:      link,
		}
		if mediaID, ok := ExtractMediaID(link); ok {
			lecture.MediaID = models.StringPtr(mediaID)
			if title == "" {
				if cached, ok := s.titles.Get(mediaID); ok {
					title = cached
				}
			}
		}
		if title == "" {
			title = fmt.Sprintf("Lecture %d", n)
		}
		lecture.Title = title

		lectures = append(lectures, lecture)
		n++
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("failed to read links file", slog.String("path", path), logging.Error(err))
	}

	return lectures
}

// CourseID derives the URL-friendly id of a course from its folder name.
func CourseID(dirName string) string {
	id := strings.ToLower(dirName)
	id = strings.ReplaceAll(id, " ", "-")
	return strings.NewReplacer("[", "", "]", "", "(", "", ")", "").Replace(id)
}

func humanizeStem(stem string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(stem, "_", " "))
}

func courseFileURL(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return "/courses/" + strings.Join(escaped, "/")
}
