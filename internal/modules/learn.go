package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// CourseService manages learning tracks. Course progress mirrors module
// completion and is refreshed on every module toggle.
type CourseService struct {
	mirror *mirror.Mirror[models.Course]
	notify Notifier
}

func newCourseService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *CourseService {
	col := storage.NewCollection[models.Course](store, models.CollectionCourses)
	return &CourseService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.Course](onErr)),
		notify: notify,
	}
}

func seedCourses() []models.Course {
	return []models.Course{
		{ID: "1", Title: "Introduction to Machine Learning",
			Description: "Learn the basics of supervised and unsupervised learning.",
			Progress:    50, Status: models.CourseActive, Difficulty: models.DifficultyIntermediate,
			Modules: []models.CourseModule{
				{ID: "m1", Title: "What is ML?", Description: "Overview of AI field.", Completed: true},
				{ID: "m2", Title: "Linear Regression", Description: "Predicting continuous values.", Completed: true},
				{ID: "m3", Title: "Logistic Regression", Description: "Classification basics."},
				{ID: "m4", Title: "Neural Networks", Description: "Introduction to Deep Learning."},
			}},
	}
}

func (s *CourseService) init() { s.mirror.Init(seedCourses()) }

// List returns a snapshot of all courses.
func (s *CourseService) List() []models.Course { return s.mirror.Snapshot() }

// Get returns a single course by id.
func (s *CourseService) Get(id string) (models.Course, bool) { return s.mirror.Find(id) }

// Add stores a course (typically an AI-generated syllabus). Missing ids on
// the course or its modules are filled in.
func (s *CourseService) Add(course models.Course) (models.Course, error) {
	if course.ID == "" {
		course.ID = models.NewID()
	}
	for i := range course.Modules {
		if course.Modules[i].ID == "" {
			course.Modules[i].ID = models.NewID()
		}
	}
	if course.Status == "" {
		course.Status = models.CourseActive
	}
	course.Progress = course.ComputeProgress()
	err := s.mirror.Apply(func(courses []models.Course) []models.Course {
		return append([]models.Course{course}, courses...)
	})
	s.notify(models.CollectionCourses, "created", course.ID)
	return course, err
}

// ToggleModule flips one module's completion flag, refreshes the stored
// progress, and marks the course completed at 100%.
func (s *CourseService) ToggleModule(courseID, moduleID string) error {
	err := s.apply(courseID, func(c *models.Course) {
		for i := range c.Modules {
			if c.Modules[i].ID == moduleID {
				c.Modules[i].Completed = !c.Modules[i].Completed
			}
		}
		c.Progress = c.ComputeProgress()
		switch {
		case c.Progress >= 100:
			c.Status = models.CourseCompleted
		case c.Status == models.CourseCompleted:
			c.Status = models.CourseActive
		}
	})
	s.notify(models.CollectionCourses, "updated", courseID)
	return err
}

// SetStatus overrides a course's status label.
func (s *CourseService) SetStatus(courseID string, status models.CourseStatus) error {
	err := s.apply(courseID, func(c *models.Course) {
		c.Status = status
	})
	s.notify(models.CollectionCourses, "updated", courseID)
	return err
}

// Remove deletes a course.
func (s *CourseService) Remove(id string) error {
	err := s.mirror.Apply(func(courses []models.Course) []models.Course {
		kept := courses[:0]
		for _, c := range courses {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		return kept
	})
	s.notify(models.CollectionCourses, "deleted", id)
	return err
}

func (s *CourseService) apply(id string, fn func(*models.Course)) error {
	return s.mirror.Apply(func(courses []models.Course) []models.Course {
		for i := range courses {
			if courses[i].ID == id {
				fn(&courses[i])
			}
		}
		return courses
	})
}
