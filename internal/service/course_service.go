package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CourseService manages courses and enrollments.
type CourseService struct {
	courses courseAdminStore
	users   userStore
	log     zerolog.Logger
}

func NewCourseService(courses courseAdminStore, users userStore, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		users:   users,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

func (s *CourseService) Create(ctx context.Context, ownerID int, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:   req.Title,
		Code:    req.Code,
		OwnerID: ownerID,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (s *CourseService) Get(ctx context.Context, id int) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id, actorID int, role model.Role, req *model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && course.OwnerID != actorID {
		return nil, ErrForbidden
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Code != "" {
		course.Code = req.Code
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

func (s *CourseService) Delete(ctx context.Context, id, actorID int, role model.Role) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if role != model.RoleAdmin && course.OwnerID != actorID {
		return ErrForbidden
	}
	return s.courses.Delete(ctx, id)
}

// List returns the actor's courses. Admins see every course.
func (s *CourseService) List(ctx context.Context, actorID int, role model.Role) ([]model.Course, error) {
	if role == model.RoleAdmin {
		return s.courses.ListByOwner(ctx, 0)
	}
	return s.courses.ListByOwner(ctx, actorID)
}

// Enroll adds a student to a course. Enrolling an already-enrolled student
// is a no-op.
func (s *CourseService) Enroll(ctx context.Context, courseID, actorID int, role model.Role, req *model.EnrollRequest) error {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if role != model.RoleAdmin && course.OwnerID != actorID {
		return ErrForbidden
	}

	student, err := s.users.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get student: %w", err)
	}
	if student.Role != model.RoleStudent {
		return ErrForbidden
	}
	return s.courses.Enroll(ctx, courseID, req.StudentID)
}

// ListStudents returns a course's enrolled students ordered by name.
func (s *CourseService) ListStudents(ctx context.Context, courseID int) ([]model.User, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	return s.courses.ListEnrolledStudents(ctx, courseID)
}
