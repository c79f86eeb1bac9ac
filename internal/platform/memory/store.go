// Package memory provides in-process implementations of the store
// interfaces. They enforce the same uniqueness and reference rules as the
// postgres schema and are used by tests and the memory database driver.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/store"
)

type courseLevel struct {
	languageID uuid.UUID
	level      int
}

type linkKey struct {
	courseID uuid.UUID
	skillID  uuid.UUID
}

// DB is an in-memory database shared by the stores it hands out.
type DB struct {
	mu sync.RWMutex

	languages     map[uuid.UUID]domain.Language
	languageCodes map[string]uuid.UUID
	courses       map[uuid.UUID]domain.Course
	courseLevels  map[courseLevel]uuid.UUID
	skills        map[uuid.UUID]domain.Skill
	links         map[linkKey]domain.CourseSkill
	lessons       map[uuid.UUID]domain.Lesson
	content       map[uuid.UUID]domain.ContentItem
	assessments   map[uuid.UUID]domain.Assessment
	reports       map[uuid.UUID]domain.ValidationReport

	// insertion order, for stable listings
	seq   int
	order map[uuid.UUID]int
}

// NewDB creates an empty database.
func NewDB() *DB {
	return &DB{
		languages:     make(map[uuid.UUID]domain.Language),
		languageCodes: make(map[string]uuid.UUID),
		courses:       make(map[uuid.UUID]domain.Course),
		courseLevels:  make(map[courseLevel]uuid.UUID),
		skills:        make(map[uuid.UUID]domain.Skill),
		links:         make(map[linkKey]domain.CourseSkill),
		lessons:       make(map[uuid.UUID]domain.Lesson),
		content:       make(map[uuid.UUID]domain.ContentItem),
		assessments:   make(map[uuid.UUID]domain.Assessment),
		reports:       make(map[uuid.UUID]domain.ValidationReport),
		order:         make(map[uuid.UUID]int),
	}
}

// NewStores returns a store bundle over a fresh database.
func NewStores() store.Stores {
	return NewDB().Stores()
}

// Stores returns a store bundle over db.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Languages:   &LanguageStore{db: db},
		Courses:     &CourseStore{db: db},
		Skills:      &SkillStore{db: db},
		Lessons:     &LessonStore{db: db},
		Content:     &ContentStore{db: db},
		Assessments: &AssessmentStore{db: db},
		Reports:     &ReportStore{db: db},
	}
}

// Counts reports the number of rows per table.
func (db *DB) Counts() map[string]int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return map[string]int{
		"languages":     len(db.languages),
		"courses":       len(db.courses),
		"skills":        len(db.skills),
		"course_skills": len(db.links),
		"lessons":       len(db.lessons),
		"content_items": len(db.content),
		"assessments":   len(db.assessments),
		"reports":       len(db.reports),
	}
}

// track records insertion order. Callers hold the write lock.
func (db *DB) track(id uuid.UUID) {
	db.seq++
	db.order[id] = db.seq
}

func (db *DB) before(a, b uuid.UUID) bool {
	return db.order[a] < db.order[b]
}

// courseLessons returns the lesson ids of every skill linked to courseID.
// Callers hold the read lock.
func (db *DB) courseLessons(courseID uuid.UUID) map[uuid.UUID]struct{} {
	skills := make(map[uuid.UUID]struct{})
	for k := range db.links {
		if k.courseID == courseID {
			skills[k.skillID] = struct{}{}
		}
	}
	lessons := make(map[uuid.UUID]struct{})
	for id, l := range db.lessons {
		if _, ok := skills[l.SkillID]; ok {
			lessons[id] = struct{}{}
		}
	}
	return lessons
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneIDs(s []uuid.UUID) []uuid.UUID {
	if s == nil {
		return nil
	}
	return append([]uuid.UUID(nil), s...)
}

func sortByPosition[T any](items []T, pos func(T) int, tie func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := pos(items[i]), pos(items[j])
		if pi != pj {
			return pi < pj
		}
		return tie(items[i], items[j])
	})
}

func checkCtx(ctx context.Context) error {
	return ctx.Err()
}
