package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/store"
)

// LanguageStore implements store.LanguageStore.
type LanguageStore struct{ db *DB }

// Create implements store.LanguageStore.
func (s *LanguageStore) Create(ctx context.Context, lang *domain.Language) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := lang.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.languageCodes[lang.Code]; ok {
		return store.NewStoreError("language", "create", "already exists", store.ErrLanguageExists)
	}
	s.db.languages[lang.ID] = *lang
	s.db.languageCodes[lang.Code] = lang.ID
	s.db.track(lang.ID)
	return nil
}

// FindByCode implements store.LanguageStore.
func (s *LanguageStore) FindByCode(ctx context.Context, code string) (*domain.Language, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	id, ok := s.db.languageCodes[code]
	if !ok {
		return nil, store.ErrLanguageNotFound
	}
	lang := s.db.languages[id]
	return &lang, nil
}

// GetByID implements store.LanguageStore.
func (s *LanguageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Language, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	lang, ok := s.db.languages[id]
	if !ok {
		return nil, store.ErrLanguageNotFound
	}
	return &lang, nil
}

// CourseStore implements store.CourseStore.
type CourseStore struct{ db *DB }

// Create implements store.CourseStore.
func (s *CourseStore) Create(ctx context.Context, course *domain.Course) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := course.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.languages[course.LanguageID]; !ok {
		return fmt.Errorf("%w: language %s", store.ErrReferenceMissing, course.LanguageID)
	}
	key := courseLevel{course.LanguageID, course.Level}
	if _, ok := s.db.courseLevels[key]; ok {
		return store.NewStoreError("course", "create", "already exists", store.ErrCourseExists)
	}

	c := *course
	c.LearningObjectives = cloneStrings(course.LearningObjectives)
	s.db.courses[c.ID] = c
	s.db.courseLevels[key] = c.ID
	s.db.track(c.ID)
	return nil
}

// GetByID implements store.CourseStore.
func (s *CourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	c, ok := s.db.courses[id]
	if !ok {
		return nil, store.ErrCourseNotFound
	}
	c.LearningObjectives = cloneStrings(c.LearningObjectives)
	return &c, nil
}

// FindByLanguageAndLevel implements store.CourseStore.
func (s *CourseStore) FindByLanguageAndLevel(
	ctx context.Context,
	languageID uuid.UUID,
	level int,
) (*domain.Course, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	id, ok := s.db.courseLevels[courseLevel{languageID, level}]
	s.db.mu.RUnlock()
	if !ok {
		return nil, store.ErrCourseNotFound
	}
	return s.GetByID(ctx, id)
}

// Update implements store.CourseStore.
func (s *CourseStore) Update(ctx context.Context, course *domain.Course) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := course.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.courses[course.ID]
	if !ok {
		return store.ErrCourseNotFound
	}
	if existing.LanguageID != course.LanguageID || existing.Level != course.Level {
		return fmt.Errorf("%w: language and level of a course cannot change", store.ErrUpdateFailed)
	}

	c := *course
	c.LearningObjectives = cloneStrings(course.LearningObjectives)
	c.CreatedAt = existing.CreatedAt
	s.db.courses[c.ID] = c
	return nil
}

// SkillStore implements store.SkillStore.
type SkillStore struct{ db *DB }

// Create implements store.SkillStore.
func (s *SkillStore) Create(ctx context.Context, skill *domain.Skill) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := skill.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.languages[skill.LanguageID]; !ok {
		return fmt.Errorf("%w: language %s", store.ErrReferenceMissing, skill.LanguageID)
	}
	if _, ok := s.db.skills[skill.ID]; ok {
		return fmt.Errorf("%w: skill %s", store.ErrDuplicate, skill.ID)
	}

	sk := *skill
	sk.Prerequisites = cloneIDs(skill.Prerequisites)
	s.db.skills[sk.ID] = sk
	s.db.track(sk.ID)
	return nil
}

// LinkToCourse implements store.SkillStore.
func (s *SkillStore) LinkToCourse(ctx context.Context, link domain.CourseSkill) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.courses[link.CourseID]; !ok {
		return fmt.Errorf("%w: course %s", store.ErrReferenceMissing, link.CourseID)
	}
	if _, ok := s.db.skills[link.SkillID]; !ok {
		return fmt.Errorf("%w: skill %s", store.ErrReferenceMissing, link.SkillID)
	}
	s.db.links[linkKey{link.CourseID, link.SkillID}] = link
	return nil
}

// ListByCourse implements store.SkillStore.
func (s *SkillStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Skill, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	type linked struct {
		skill    domain.Skill
		position int
	}
	var rows []linked
	for k, link := range s.db.links {
		if k.courseID == courseID {
			rows = append(rows, linked{s.db.skills[k.skillID], link.Position})
		}
	}
	sortByPosition(rows,
		func(r linked) int { return r.position },
		func(a, b linked) bool { return s.db.before(a.skill.ID, b.skill.ID) })

	out := make([]*domain.Skill, 0, len(rows))
	for _, r := range rows {
		sk := r.skill
		sk.Prerequisites = cloneIDs(sk.Prerequisites)
		out = append(out, &sk)
	}
	return out, nil
}

// LessonStore implements store.LessonStore.
type LessonStore struct{ db *DB }

// Create implements store.LessonStore.
func (s *LessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := lesson.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.skills[lesson.SkillID]; !ok {
		return fmt.Errorf("%w: skill %s", store.ErrReferenceMissing, lesson.SkillID)
	}

	l := *lesson
	l.ContentAreas = cloneStrings(lesson.ContentAreas)
	l.Prerequisites = cloneIDs(lesson.Prerequisites)
	s.db.lessons[l.ID] = l
	s.db.track(l.ID)
	return nil
}

// ListBySkill implements store.LessonStore.
func (s *LessonStore) ListBySkill(ctx context.Context, skillID uuid.UUID) ([]*domain.Lesson, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var rows []domain.Lesson
	for _, l := range s.db.lessons {
		if l.SkillID == skillID {
			rows = append(rows, l)
		}
	}
	sortByPosition(rows,
		func(l domain.Lesson) int { return l.Position },
		func(a, b domain.Lesson) bool { return s.db.before(a.ID, b.ID) })

	out := make([]*domain.Lesson, 0, len(rows))
	for _, l := range rows {
		l.ContentAreas = cloneStrings(l.ContentAreas)
		l.Prerequisites = cloneIDs(l.Prerequisites)
		out = append(out, &l)
	}
	return out, nil
}

// CountByCourse implements store.LessonStore.
func (s *LessonStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.db.courseLessons(courseID)), nil
}

// ContentStore implements store.ContentStore.
type ContentStore struct{ db *DB }

// Create implements store.ContentStore.
func (s *ContentStore) Create(ctx context.Context, item *domain.ContentItem) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.lessons[item.LessonID]; !ok {
		return fmt.Errorf("%w: lesson %s", store.ErrReferenceMissing, item.LessonID)
	}

	c := *item
	c.ExerciseTypes = cloneStrings(item.ExerciseTypes)
	s.db.content[c.ID] = c
	s.db.track(c.ID)
	return nil
}

// ListByLesson implements store.ContentStore.
func (s *ContentStore) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.ContentItem, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []*domain.ContentItem
	for _, c := range s.db.content {
		if c.LessonID == lessonID {
			c.ExerciseTypes = cloneStrings(c.ExerciseTypes)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.db.before(out[i].ID, out[j].ID) })
	return out, nil
}

// CountByCourse implements store.ContentStore.
func (s *ContentStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	lessons := s.db.courseLessons(courseID)
	n := 0
	for _, c := range s.db.content {
		if _, ok := lessons[c.LessonID]; ok {
			n++
		}
	}
	return n, nil
}

// AssessmentStore implements store.AssessmentStore.
type AssessmentStore struct{ db *DB }

// Create implements store.AssessmentStore.
func (s *AssessmentStore) Create(ctx context.Context, a *domain.Assessment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.courses[a.CourseID]; !ok {
		return fmt.Errorf("%w: course %s", store.ErrReferenceMissing, a.CourseID)
	}
	s.db.assessments[a.ID] = *a
	s.db.track(a.ID)
	return nil
}

// ListByCourse implements store.AssessmentStore.
func (s *AssessmentStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Assessment, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []*domain.Assessment
	for _, a := range s.db.assessments {
		if a.CourseID == courseID {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.db.before(out[i].ID, out[j].ID) })
	return out, nil
}

// ReportStore implements store.ReportStore.
type ReportStore struct{ db *DB }

// Create implements store.ReportStore.
func (s *ReportStore) Create(ctx context.Context, report *domain.ValidationReport) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if report.ID == uuid.Nil {
		return fmt.Errorf("%w: report id", store.ErrInvalidEntity)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.courses[report.CourseID]; !ok {
		return fmt.Errorf("%w: course %s", store.ErrReferenceMissing, report.CourseID)
	}
	if _, ok := s.db.reports[report.ID]; ok {
		return fmt.Errorf("%w: report %s", store.ErrDuplicate, report.ID)
	}
	s.db.reports[report.ID] = *report
	s.db.track(report.ID)
	return nil
}

// ListByCourse implements store.ReportStore.
func (s *ReportStore) ListByCourse(
	ctx context.Context,
	courseID uuid.UUID,
	limit int,
) ([]*domain.ValidationReport, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []*domain.ValidationReport
	for _, r := range s.db.reports {
		if r.CourseID == courseID {
			out = append(out, &r)
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return s.db.before(out[j].ID, out[i].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
