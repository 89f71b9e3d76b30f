package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type mapLookup map[string]string

func (m mapLookup) Get(id string) (string, bool) {
	title, ok := m[id]
	return title, ok
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCoursesFromSections(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "MERN Stack [2024]", "Project 1", "links.txt"),
		"https://apnacollege.wistia.com/medias/ab1234\n"+
			"\n"+
			"# comment line\n"+
			"Custom Title|https://fast.wistia.net/embed/iframe/cd5678?x=1\n"+
			"https://example.com/no-media-here\n")
	write(t, filepath.Join(root, "MERN Stack [2024]", "Project 2", "intro_to_hooks.m3u8"), "#EXTM3U\n")
	write(t, filepath.Join(root, "MERN Stack [2024]", "Project 2", "notes.txt"), "ignored")

	svc := NewCourseService(root, mapLookup{"ab1234": "Setup", "cd5678": "Ignored Cached"}, nil)
	courses := svc.Courses()
	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}

	course := courses[0]
	if course.ID != "mern-stack-2024" {
		t.Errorf("course id = %q", course.ID)
	}
	if course.Icon != "⚛️" {
		t.Errorf("course icon = %q", course.Icon)
	}
	if len(course.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(course.Sections))
	}

	links := course.Sections[0].Lectures
	if len(links) != 3 {
		t.Fatalf("expected 3 lectures from links.txt, got %d", len(links))
	}
	if links[0].ID != "lec-001" || links[0].Title != "Setup" || *links[0].MediaID != "ab1234" {
		t.Errorf("lecture 0 = %+v", links[0])
	}
	if links[1].ID != "lec-002" || links[1].Title != "Custom Title" || *links[1].MediaID != "cd5678" {
		t.Errorf("lecture 1 = %+v", links[1])
	}
	if links[2].Title != "Lecture 3" || links[2].MediaID != nil {
		t.Errorf("lecture 2 = %+v", links[2])
	}

	media := course.Sections[1].Lectures
	if len(media) != 1 {
		t.Fatalf("expected 1 playlist lecture, got %d", len(media))
	}
	if media[0].ID != "mern-stack-2024-project-2-1" {
		t.Errorf("playlist lecture id = %q", media[0].ID)
	}
	if media[0].Title != "Intro To Hooks" {
		t.Errorf("playlist lecture title = %q", media[0].Title)
	}
	if media[0].URL != "/courses/MERN%20Stack%20%5B2024%5D/Project%202/intro_to_hooks.m3u8" {
		t.Errorf("playlist lecture url = %q", media[0].URL)
	}
}

func TestCoursesFallbackLinksSection(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Docker Basics", "links.txt"), "https://x.wistia.com/medias/dk1\n")

	courses := NewCourseService(root, mapLookup{}, nil).Courses()
	if len(courses) != 1 || len(courses[0].Sections) != 1 {
		t.Fatalf("unexpected tree: %+v", courses)
	}
	if courses[0].Sections[0].Name != "Lectures" {
		t.Errorf("section name = %q", courses[0].Sections[0].Name)
	}
	if courses[0].Icon != "🐳" {
		t.Errorf("icon = %q", courses[0].Icon)
	}
}

func TestCoursesRootLinksIgnoredWhenSubdirsExist(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Course", "links.txt"), "https://x.wistia.com/medias/top1\n")
	write(t, filepath.Join(root, "Course", "week 1", "links.txt"), "https://x.wistia.com/medias/w1\n")

	courses := NewCourseService(root, mapLookup{}, nil).Courses()
	if len(courses) != 1 || len(courses[0].Sections) != 1 || courses[0].Sections[0].Name != "week 1" {
		t.Fatalf("unexpected tree: %+v", courses)
	}
}

func TestCoursesOmitEmptySectionsAndCourses(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Empty Course", "Section A", "links.txt"), "")
	write(t, filepath.Join(root, "Java", "Basics", "links.txt"), "")
	write(t, filepath.Join(root, "Java", "OOP", "links.txt"), "https://x.wistia.com/medias/oop1\n")

	courses := NewCourseService(root, mapLookup{}, nil).Courses()
	if len(courses) != 1 {
		t.Fatalf("expected only Java, got %+v", courses)
	}
	if len(courses[0].Sections) != 1 || courses[0].Sections[0].Name != "OOP" {
		t.Fatalf("empty section should be omitted: %+v", courses[0].Sections)
	}
}

func TestCoursesMissingRoot(t *testing.T) {
	svc := NewCourseService(filepath.Join(t.TempDir(), "missing"), mapLookup{}, nil)
	courses := svc.Courses()
	if courses == nil || len(courses) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", courses)
	}
}

func TestCourseLookupAndStats(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "DSA", "Arrays", "links.txt"),
		"https://x.wistia.com/medias/a1\nhttps://x.wistia.com/medias/a2\n")
	write(t, filepath.Join(root, "DSA", "Trees", "t1.m3u8"), "")

	svc := NewCourseService(root, mapLookup{}, nil)

	course, err := svc.Course("dsa")
	if err != nil {
		t.Fatalf("Course: %v", err)
	}
	if course.Icon != "💻" {
		t.Errorf("icon = %q", course.Icon)
	}
	if _, err := svc.Course("does-not-exist"); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}

	stats := svc.Stats()
	if stats.TotalCourses != 1 || stats.TotalLectures != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCourseIcon(t *testing.T) {
	cases := map[string]string{
		"Aptitude Prep":     "🧮",
		"JAVA Placement":    "☕",
		"React Native":      "⚛️",
		"Node and Express":  "🟢",
		"Web Dev Projects":  "🚀",
		"Something Else":    "📚",
		"CICD with Jenkins": "⚙️",
	}
	for name, want := range cases {
		if got := CourseIcon(name); got != want {
			t.Errorf("CourseIcon(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCourseID(t *testing.T) {
	if got := CourseID("Alpha (Batch) [v2]"); got != "alpha-batch-v2" {
		t.Fatalf("CourseID = %q", got)
	}
}
