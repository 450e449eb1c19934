package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/repository"
)

// memDB is an in-memory stand-in for the Postgres schema. Every method holds the mutex for
// its whole body, which gives the same per-unit atomicity the SQL transactions provide.
type memDB struct {
	mu sync.Mutex

	seq            int
	clock          time.Time
	members        map[string]*models.Member
	txs            []models.Transaction
	courses        map[string]*models.Course
	classes        map[string]*models.Class
	enrollments    map[[2]string]bool
	packages       map[string]*models.Package
	packageCourses map[string][]string
	trainers       map[string]*models.Trainer
	items          map[string]*models.RentalItem
	loans          []*models.RentalLogEntry

	enrollErr map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		clock:          time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		members:        map[string]*models.Member{},
		courses:        map[string]*models.Course{},
		classes:        map[string]*models.Class{},
		enrollments:    map[[2]string]bool{},
		packages:       map[string]*models.Package{},
		packageCourses: map[string][]string{},
		trainers:       map[string]*models.Trainer{},
		items:          map[string]*models.RentalItem{},
		enrollErr:      map[string]error{},
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// memberStore implements the member and report-member repositories.
type memberStore struct{ *memDB }

func (s memberStore) FindByID(_ context.Context, id string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *m
	return &copied, nil
}

func (s memberStore) Create(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member.ID = s.nextID("mem")
	member.Tier = models.TierBasic
	member.BalanceCents = 0
	copied := *member
	s.members[member.ID] = &copied
	return nil
}

func (s memberStore) ListNegativeBalance(_ context.Context) ([]models.NegativeBalanceMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.NegativeBalanceMember
	for _, m := range s.members {
		if m.BalanceCents < 0 {
			out = append(out, models.NegativeBalanceMember{MemberID: m.ID, Name: m.FullName(), Phone: m.Phone, BalanceCents: m.BalanceCents})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memberStore) DeleteCascade(_ context.Context, id string) (*models.MemberDeletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if m.BalanceCents < 0 {
		return nil, repository.ErrNegativeBalance
	}
	result := &models.MemberDeletion{MemberID: id, UnenrolledClasses: []string{}, SettledLoans: []string{}}
	for key := range s.enrollments {
		if key[0] == id {
			delete(s.enrollments, key)
			s.classes[key[1]].Enrollment--
			result.UnenrolledClasses = append(result.UnenrolledClasses, key[1])
		}
	}
	sort.Strings(result.UnenrolledClasses)
	for _, loan := range s.loans {
		if loan.MemberID == id && !loan.Returned {
			loan.Returned = true
			s.items[loan.ItemID].QuantityInStock += loan.QuantityBorrowed
			result.SettledLoans = append(result.SettledLoans, loan.ID)
		}
	}
	delete(s.members, id)
	return result, nil
}

// ledgerStore implements ledgerRepository.
type ledgerStore struct{ *memDB }

func (s ledgerStore) ApplyEntry(_ context.Context, memberID string, txType models.TransactionType, amountCents int64, resolve repository.TierResolver) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if (amountCents > 0 && m.BalanceCents > math.MaxInt64-amountCents) || (amountCents < 0 && m.BalanceCents < math.MinInt64-amountCents) {
		return nil, repository.ErrBalanceOverflow
	}
	record := models.Transaction{ID: s.nextID("tx"), MemberID: memberID, Type: txType, AmountCents: amountCents, CreatedAt: s.tick()}
	s.txs = append(s.txs, record)
	var spend int64
	for _, tx := range s.txs {
		if tx.MemberID == memberID && tx.Type == models.TransactionPurchase {
			spend -= tx.AmountCents
		}
	}
	m.BalanceCents += amountCents
	m.Tier = resolve(spend)
	return &models.LedgerEntry{Transaction: record, Member: *m}, nil
}

func (s ledgerStore) SumByMemberAndType(_ context.Context, memberID string, txType models.TransactionType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, tx := range s.txs {
		if tx.MemberID == memberID && tx.Type == txType {
			total += tx.AmountCents
		}
	}
	return total, nil
}

func (s ledgerStore) ListByMember(_ context.Context, memberID string, limit, offset int) ([]models.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, tx := range s.txs {
		if tx.MemberID == memberID {
			out = append(out, tx)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

// courseStore implements the schedule, enrollment and report class repositories.
type courseStore struct{ *memDB }

func (s courseStore) CreateCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course.ID = s.nextID("course")
	copied := *course
	s.courses[course.ID] = &copied
	return nil
}

func (s courseStore) FindCourseByID(_ context.Context, id string) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (s courseStore) FindCourseByName(_ context.Context, category string, catalogNum int) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.Category == category && c.CatalogNum == catalogNum {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s courseStore) ListCourses(_ context.Context) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Course
	for _, c := range s.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return out, nil
}

func (s courseStore) CreateClass(_ context.Context, class *models.Class, admit repository.ClassAdmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trainers[class.TrainerID]; !ok {
		return sql.ErrNoRows
	}
	if admit != nil {
		if err := admit(s.classesWhere(func(c *models.Class) bool { return c.TrainerID == class.TrainerID })); err != nil {
			return err
		}
	}
	class.ID = s.nextID("class")
	class.Enrollment = 0
	copied := *class
	s.classes[class.ID] = &copied
	return nil
}

func (s courseStore) FindClassByID(_ context.Context, id string) (*models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (db *memDB) classesWhere(keep func(*models.Class) bool) []models.Class {
	var out []models.Class
	for _, c := range db.classes {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s courseStore) ListClassesByCourse(_ context.Context, courseID string) ([]models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classesWhere(func(c *models.Class) bool { return c.CourseID == courseID }), nil
}

func (s courseStore) ListClassesByTrainer(_ context.Context, trainerID string) ([]models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classesWhere(func(c *models.Class) bool { return c.TrainerID == trainerID }), nil
}

func (s courseStore) ListClassesActiveBetween(_ context.Context, from, to time.Time) ([]models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classesWhere(func(c *models.Class) bool { return c.ActiveDuring(from, to) }), nil
}

func (s courseStore) ListClassesByMember(_ context.Context, memberID string) ([]models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classesWhere(func(c *models.Class) bool { return s.enrollments[[2]string{memberID, c.ID}] }), nil
}

func (s courseStore) DeleteClass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[id]; !ok {
		return sql.ErrNoRows
	}
	for key := range s.enrollments {
		if key[1] == id {
			delete(s.enrollments, key)
		}
	}
	delete(s.classes, id)
	return nil
}

func (s courseStore) Enroll(_ context.Context, memberID, classID string) (models.EnrollOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enrollErr[classID]; err != nil {
		return "", err
	}
	c, ok := s.classes[classID]
	if !ok {
		return "", sql.ErrNoRows
	}
	key := [2]string{memberID, classID}
	if s.enrollments[key] {
		return models.EnrollOutcomeAlreadyEnrolled, nil
	}
	if c.Enrollment >= c.Capacity {
		return models.EnrollOutcomeFull, nil
	}
	s.enrollments[key] = true
	c.Enrollment++
	return models.EnrollOutcomeEnrolled, nil
}

// packageStore implements packageRepository.
type packageStore struct{ *memDB }

func (s packageStore) Create(_ context.Context, pkg *models.Package, courseIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg.ID = s.nextID("pkg")
	copied := *pkg
	s.packages[pkg.Name] = &copied
	s.packageCourses[pkg.ID] = append([]string(nil), courseIDs...)
	return nil
}

func (s packageStore) FindByName(_ context.Context, name string) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s packageStore) List(_ context.Context) ([]models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Package
	for _, p := range s.packages {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s packageStore) ListCourses(_ context.Context, packageID string) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Course
	for _, id := range s.packageCourses[packageID] {
		if c, ok := s.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s packageStore) UpdateCost(_ context.Context, name string, costCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[name]
	if !ok {
		return sql.ErrNoRows
	}
	p.CostCents = costCents
	return nil
}

func (s packageStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[name]
	if !ok {
		return sql.ErrNoRows
	}
	delete(s.packageCourses, p.ID)
	delete(s.packages, name)
	return nil
}

// trainerStore implements trainerRepository.
type trainerStore struct{ *memDB }

func (s trainerStore) Create(_ context.Context, trainer *models.Trainer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trainer.ID = s.nextID("trainer")
	copied := *trainer
	s.trainers[trainer.ID] = &copied
	return nil
}

func (s trainerStore) FindByID(_ context.Context, id string) (*models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trainers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (s trainerStore) List(_ context.Context) ([]models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Trainer
	for _, t := range s.trainers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

// rentalStore implements rentalRepository.
type rentalStore struct{ *memDB }

func (s rentalStore) CreateItem(_ context.Context, item *models.RentalItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID("item")
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s rentalStore) FindItemByID(_ context.Context, id string) (*models.RentalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (s rentalStore) ListItems(_ context.Context) ([]models.RentalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RentalItem
	for _, item := range s.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s rentalStore) Checkout(_ context.Context, memberID, itemID string, quantity int) (*models.RentalLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if item.QuantityInStock < quantity {
		return nil, repository.ErrInsufficientStock
	}
	item.QuantityInStock -= quantity
	entry := &models.RentalLogEntry{ID: s.nextID("loan"), MemberID: memberID, ItemID: itemID, CheckoutTime: s.tick(), QuantityBorrowed: quantity}
	s.loans = append(s.loans, entry)
	copied := *entry
	return &copied, nil
}

func (s rentalStore) Return(_ context.Context, memberID, itemID string) (*models.RentalLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, loan := range s.loans {
		if loan.MemberID == memberID && loan.ItemID == itemID && !loan.Returned {
			now := s.tick()
			loan.Returned = true
			loan.ReturnedAt = &now
			item.QuantityInStock += loan.QuantityBorrowed
			copied := *loan
			return &copied, nil
		}
	}
	return nil, repository.ErrNoOpenLoan
}

func (s rentalStore) ListOutstanding(_ context.Context, memberID string) ([]models.OutstandingLoan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := map[string]int{}
	for _, loan := range s.loans {
		if loan.MemberID == memberID && !loan.Returned {
			totals[loan.ItemID] += loan.QuantityBorrowed
		}
	}
	var out []models.OutstandingLoan
	for itemID, qty := range totals {
		out = append(out, models.OutstandingLoan{ItemID: itemID, ItemName: s.items[itemID].Name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (s rentalStore) loan(id string) models.RentalLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loan := range s.loans {
		if loan.ID == id {
			return *loan
		}
	}
	return models.RentalLogEntry{}
}

// seed helpers

func (db *memDB) addMember(name string, tier models.MembershipTier, balance int64) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID("mem")
	db.members[id] = &models.Member{ID: id, FirstName: name, Tier: tier, BalanceCents: balance}
	return id
}

func (db *memDB) addTrainer(name string) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID("trainer")
	db.trainers[id] = &models.Trainer{ID: id, FirstName: name}
	return id
}

func (db *memDB) addCourse(category string, num int) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID("course")
	db.courses[id] = &models.Course{ID: id, Category: category, CatalogNum: num}
	return id
}

func (db *memDB) addClass(c models.Class) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c.ID == "" {
		c.ID = db.nextID("class")
	}
	db.classes[c.ID] = &c
	return c.ID
}

func (db *memDB) addPackage(name string, cost int64, courseIDs ...string) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID("pkg")
	db.packages[name] = &models.Package{ID: id, Name: name, CostCents: cost}
	db.packageCourses[id] = courseIDs
	return id
}

func (db *memDB) addItem(name string, stock int) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID("item")
	db.items[id] = &models.RentalItem{ID: id, Name: name, QuantityInStock: stock}
	return id
}

func (db *memDB) class(id string) models.Class {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.classes[id]
}

func (db *memDB) member(id string) models.Member {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.members[id]
}

func (db *memDB) item(id string) models.RentalItem {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.items[id]
}

func (db *memDB) enrollmentCount(memberID, classID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.enrollments[[2]string{memberID, classID}] {
		return 1
	}
	return 0
}

// blockingMembers simulates a storage call that never returns before the deadline.
type blockingMembers struct{}

func (blockingMembers) FindByID(ctx context.Context, _ string) (*models.Member, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
