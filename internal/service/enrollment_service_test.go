package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

func newEnrollmentFixture() (*memDB, *EnrollmentService) {
	db := newMemDB()
	ledger := NewLedgerService(ledgerStore{db}, memberStore{db}, nil, time.Second, nil)
	svc := NewEnrollmentService(courseStore{db}, packageStore{db}, memberStore{db}, ledger, nil, time.Second, nil)
	return db, svc
}

func weeklyClass(courseID, trainerID string, enrollment, capacity int) models.Class {
	return models.Class{
		CourseID:        courseID,
		TrainerID:       trainerID,
		StartTime:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Enrollment:      enrollment,
		Capacity:        capacity,
	}
}

func TestEnrollmentServicePurchasePackageDiamondWithFullClass(t *testing.T) {
	db, svc := newEnrollmentFixture()
	ctx := context.Background()

	memberID := db.addMember("Dana", models.TierDiamond, 0)
	trainerID := db.addTrainer("Tom")
	courseID := db.addCourse("YOGA", 101)
	full := db.addClass(weeklyClass(courseID, trainerID, 10, 10))
	open := db.addClass(weeklyClass(courseID, trainerID, 5, 10))
	db.addPackage("Yoga Basics", 10000, courseID)

	result, err := svc.PurchasePackage(ctx, memberID, "Yoga Basics")
	require.NoError(t, err)

	assert.Equal(t, int64(-7000), result.Transaction.AmountCents)
	assert.Equal(t, []string{open}, result.Enrolled)
	assert.Equal(t, []string{full}, result.CapacityExceeded)
	assert.Empty(t, result.AlreadyEnrolled)
	assert.Empty(t, result.Failed)

	assert.Equal(t, int64(-7000), db.member(memberID).BalanceCents)
	assert.Equal(t, 10, db.class(full).Enrollment)
	assert.Equal(t, 6, db.class(open).Enrollment)
	assert.Equal(t, 0, db.enrollmentCount(memberID, full))
	assert.Equal(t, 1, db.enrollmentCount(memberID, open))
}

func TestEnrollmentServiceOverlappingPackagesEnrollOnce(t *testing.T) {
	db, svc := newEnrollmentFixture()
	ctx := context.Background()

	memberID := db.addMember("Eli", models.TierBasic, 0)
	trainerID := db.addTrainer("Tom")
	shared := db.addCourse("SPIN", 200)
	other := db.addCourse("BOX", 300)
	sharedClass := db.addClass(weeklyClass(shared, trainerID, 0, 5))
	otherClass := db.addClass(weeklyClass(other, trainerID, 0, 5))
	db.addPackage("Cardio", 2000, shared)
	db.addPackage("Combat", 3000, shared, other)

	first, err := svc.PurchasePackage(ctx, memberID, "Cardio")
	require.NoError(t, err)
	assert.Equal(t, []string{sharedClass}, first.Enrolled)

	second, err := svc.PurchasePackage(ctx, memberID, "Combat")
	require.NoError(t, err)
	assert.Equal(t, []string{otherClass}, second.Enrolled)
	assert.Equal(t, []string{sharedClass}, second.AlreadyEnrolled)

	again, err := svc.PurchasePackage(ctx, memberID, "Combat")
	require.NoError(t, err)
	assert.Empty(t, again.Enrolled)
	assert.ElementsMatch(t, []string{sharedClass, otherClass}, again.AlreadyEnrolled)

	assert.Equal(t, 1, db.class(sharedClass).Enrollment)
	assert.Equal(t, 1, db.class(otherClass).Enrollment)
	assert.Equal(t, int64(-8000), db.member(memberID).BalanceCents)
}

func TestEnrollmentServicePurchaseUnknownPackage(t *testing.T) {
	db, svc := newEnrollmentFixture()
	memberID := db.addMember("Eli", models.TierBasic, 0)

	_, err := svc.PurchasePackage(context.Background(), memberID, "Nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPackageNotFound)
	assert.Empty(t, db.txs)
}

func TestEnrollmentServicePurchaseKeepsPaymentWhenEnrollFails(t *testing.T) {
	db, svc := newEnrollmentFixture()
	memberID := db.addMember("Eli", models.TierGold, 0)
	trainerID := db.addTrainer("Tom")
	courseID := db.addCourse("PILATES", 1)
	broken := db.addClass(weeklyClass(courseID, trainerID, 0, 5))
	db.enrollErr[broken] = errors.New("connection reset")
	db.addPackage("Core", 5000, courseID)

	result, err := svc.PurchasePackage(context.Background(), memberID, "Core")
	require.NoError(t, err)
	assert.Equal(t, []string{broken}, result.Failed)
	assert.Equal(t, int64(-4000), db.member(memberID).BalanceCents)
}

func TestEnrollmentServiceEnrollInClassCapacity(t *testing.T) {
	db, svc := newEnrollmentFixture()
	ctx := context.Background()
	trainerID := db.addTrainer("Tom")
	courseID := db.addCourse("HIIT", 5)
	classID := db.addClass(weeklyClass(courseID, trainerID, 0, 3))

	for i := 0; i < 3; i++ {
		memberID := db.addMember("m", models.TierBasic, 0)
		outcome, err := svc.EnrollInClass(ctx, memberID, classID)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollOutcomeEnrolled, outcome)
	}

	late := db.addMember("late", models.TierBasic, 0)
	outcome, err := svc.EnrollInClass(ctx, late, classID)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.Equal(t, models.EnrollOutcomeFull, outcome)
	assert.Equal(t, 3, db.class(classID).Enrollment)
}

func TestEnrollmentServiceEnrollInClassTwice(t *testing.T) {
	db, svc := newEnrollmentFixture()
	ctx := context.Background()
	memberID := db.addMember("Ana", models.TierBasic, 0)
	classID := db.addClass(weeklyClass(db.addCourse("HIIT", 5), db.addTrainer("Tom"), 0, 3))

	_, err := svc.EnrollInClass(ctx, memberID, classID)
	require.NoError(t, err)
	outcome, err := svc.EnrollInClass(ctx, memberID, classID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollOutcomeAlreadyEnrolled, outcome)
	assert.Equal(t, 1, db.class(classID).Enrollment)

	classes, err := svc.ListMemberClasses(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, classID, classes[0].ID)
}

func TestEnrollmentServiceEnrollInClassNotFound(t *testing.T) {
	db, svc := newEnrollmentFixture()
	memberID := db.addMember("Ana", models.TierBasic, 0)

	_, err := svc.EnrollInClass(context.Background(), memberID, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.EnrollInClass(context.Background(), "ghost", "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEnrollmentNeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		db, svc := newEnrollmentFixture()
		ctx := context.Background()
		trainerID := db.addTrainer("Tom")
		courseID := db.addCourse("YOGA", 101)

		classIDs := make([]string, rapid.IntRange(1, 4).Draw(rt, "classes"))
		capacity := map[string]int{}
		for i := range classIDs {
			c := rapid.IntRange(0, 4).Draw(rt, "capacity")
			classIDs[i] = db.addClass(weeklyClass(courseID, trainerID, 0, c))
			capacity[classIDs[i]] = c
		}
		memberIDs := make([]string, rapid.IntRange(1, 6).Draw(rt, "members"))
		for i := range memberIDs {
			memberIDs[i] = db.addMember("Member", models.TierBasic, 0)
		}

		enrolled := map[[2]string]bool{}
		perClass := map[string]int{}
		attempts := rapid.IntRange(1, 40).Draw(rt, "attempts")
		for i := 0; i < attempts; i++ {
			memberID := rapid.SampledFrom(memberIDs).Draw(rt, "member")
			classID := rapid.SampledFrom(classIDs).Draw(rt, "class")
			pair := [2]string{memberID, classID}

			outcome, err := svc.EnrollInClass(ctx, memberID, classID)
			switch {
			case enrolled[pair]:
				if err != nil || outcome != models.EnrollOutcomeAlreadyEnrolled {
					rt.Fatalf("re-enroll %v: outcome %s err %v", pair, outcome, err)
				}
			case perClass[classID] >= capacity[classID]:
				if !errors.Is(err, appErrors.ErrCapacityExceeded) || outcome != models.EnrollOutcomeFull {
					rt.Fatalf("enroll into full class %s: outcome %s err %v", classID, outcome, err)
				}
			default:
				if err != nil || outcome != models.EnrollOutcomeEnrolled {
					rt.Fatalf("enroll %v: outcome %s err %v", pair, outcome, err)
				}
				enrolled[pair] = true
				perClass[classID]++
			}
		}

		for _, classID := range classIDs {
			class := db.class(classID)
			if class.Enrollment > class.Capacity {
				rt.Fatalf("class %s enrollment %d exceeds capacity %d", classID, class.Enrollment, class.Capacity)
			}
			if class.Enrollment != perClass[classID] {
				rt.Fatalf("class %s enrollment %d, want %d", classID, class.Enrollment, perClass[classID])
			}
			for _, memberID := range memberIDs {
				want := 0
				if enrolled[[2]string{memberID, classID}] {
					want = 1
				}
				if got := db.enrollmentCount(memberID, classID); got != want {
					rt.Fatalf("member %s in class %s recorded %d times, want %d", memberID, classID, got, want)
				}
			}
		}
		for _, memberID := range memberIDs {
			classes, err := svc.ListMemberClasses(ctx, memberID)
			if err != nil {
				rt.Fatalf("list classes: %v", err)
			}
			seen := map[string]bool{}
			for _, class := range classes {
				if seen[class.ID] || !enrolled[[2]string{memberID, class.ID}] {
					rt.Fatalf("member %s listed in class %s unexpectedly", memberID, class.ID)
				}
				seen[class.ID] = true
			}
		}
	})
}
