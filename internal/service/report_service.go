package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
	"github.com/noah-isme/gym-ops-api/pkg/export"
)

// Report names accepted by Dataset.
const (
	ReportNegativeBalances = "negative-balances"
	ReportTrainerHours     = "trainer-hours"
)

type reportMemberRepository interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	ListNegativeBalance(ctx context.Context) ([]models.NegativeBalanceMember, error)
}

type reportClassRepository interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListClassesActiveBetween(ctx context.Context, from, to time.Time) ([]models.Class, error)
	ListClassesByMember(ctx context.Context, memberID string) ([]models.Class, error)
}

type trainerLister interface {
	List(ctx context.Context) ([]models.Trainer, error)
}

type reportCache interface {
	Generation(ctx context.Context, pattern string) (int64, error)
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportService answers read-only aggregate queries.
type ReportService struct {
	members  reportMemberRepository
	classes  reportClassRepository
	trainers trainerLister
	cache    reportCache
	cacheTTL time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewReportService constructs ReportService. cache may be nil.
func NewReportService(members reportMemberRepository, classes reportClassRepository, trainers trainerLister, cache reportCache, cacheTTL, timeout time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		members:  members,
		classes:  classes,
		trainers: trainers,
		cache:    cache,
		cacheTTL: cacheTTL,
		timeout:  operationTimeout(timeout),
		logger:   logger,
	}
}

func monthBounds(year int, month time.Month) (time.Time, time.Time, error) {
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}
	if month < time.January || month > time.December {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1), nil
}

// NegativeBalanceMembers lists members owing money, sorted by name.
func (s *ReportService) NegativeBalanceMembers(ctx context.Context) ([]models.NegativeBalanceMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.members.ListNegativeBalance(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list negative balances")
	}
	if rows == nil {
		rows = []models.NegativeBalanceMember{}
	}
	return rows, nil
}

// TrainerMonthlyHours totals, for every trainer, the session length of each class whose
// active window intersects the month. Trainers with no such class report zero.
func (s *ReportService) TrainerMonthlyHours(ctx context.Context, year int, month time.Month) (*models.TrainerHoursReport, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The generation is read before the data so a concurrent invalidation retires this key.
	var key string
	if s.cache != nil {
		if generation, err := s.cache.Generation(ctx, trainerHoursCachePattern); err == nil {
			key = trainerHoursCacheKey(generation, year, month)
			var cached models.TrainerHoursReport
			if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
				return &cached, nil
			}
		}
	}

	trainers, err := s.trainers.List(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list trainers")
	}
	classes, err := s.classes.ListClassesActiveBetween(ctx, from, to)
	if err != nil {
		return nil, storageFailure(err, "failed to list classes")
	}

	minutes := make(map[string]int, len(trainers))
	for _, class := range classes {
		if class.ActiveDuring(from, to) {
			minutes[class.TrainerID] += class.DurationMinutes
		}
	}

	report := &models.TrainerHoursReport{Year: year, Month: month, Trainers: make([]models.TrainerHours, 0, len(trainers))}
	for _, trainer := range trainers {
		report.Trainers = append(report.Trainers, models.TrainerHours{
			TrainerID:   trainer.ID,
			TrainerName: trainer.FullName(),
			Hours:       float64(minutes[trainer.ID]) / 60,
		})
	}

	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Debug("trainer hours not cached", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// MemberSchedule lists the weekly sessions of a member's classes active in the month,
// ordered by weekday then start time.
func (s *ReportService) MemberSchedule(ctx context.Context, memberID string, year int, month time.Month) ([]models.ScheduleSlot, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	classes, err := s.classes.ListClassesByMember(ctx, memberID)
	if err != nil {
		return nil, storageFailure(err, "failed to list member classes")
	}
	courses, err := s.classes.ListCourses(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list courses")
	}
	names := make(map[string]string, len(courses))
	for _, course := range courses {
		names[course.ID] = course.DisplayName()
	}

	slots := make([]models.ScheduleSlot, 0, len(classes))
	for _, class := range classes {
		if !class.ActiveDuring(from, to) {
			continue
		}
		slots = append(slots, models.ScheduleSlot{
			ClassID:    class.ID,
			CourseName: names[class.CourseID],
			Weekday:    class.Weekday(),
			StartHour:  class.StartTime.Format("15:04"),
			EndHour:    class.StartTime.Add(class.Duration()).Format("15:04"),
		})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Weekday != slots[j].Weekday {
			return slots[i].Weekday < slots[j].Weekday
		}
		return slots[i].StartHour < slots[j].StartHour
	})
	return slots, nil
}

// Dataset renders a named report as a tabular export dataset.
func (s *ReportService) Dataset(ctx context.Context, report string, year int, month time.Month) (export.Dataset, error) {
	switch report {
	case ReportNegativeBalances:
		rows, err := s.NegativeBalanceMembers(ctx)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{Title: "Members With Negative Balance", Headers: []string{"Name", "Phone", "Balance"}}
		for _, row := range rows {
			data.Rows = append(data.Rows, map[string]string{
				"Name":    row.Name,
				"Phone":   row.Phone,
				"Balance": formatCents(row.BalanceCents),
			})
		}
		return data, nil
	case ReportTrainerHours:
		hours, err := s.TrainerMonthlyHours(ctx, year, month)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   fmt.Sprintf("Trainer Hours %s %d", month, year),
			Headers: []string{"Trainer", "Hours"},
		}
		for _, row := range hours.Trainers {
			data.Rows = append(data.Rows, map[string]string{
				"Trainer": row.TrainerName,
				"Hours":   strconv.FormatFloat(row.Hours, 'f', 2, 64),
			})
		}
		return data, nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, "unknown report "+report)
	}
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
