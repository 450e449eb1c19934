package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
)

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func performRequest(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type memberServiceMock struct {
	member   *models.Member
	deletion *models.MemberDeletion
	err      error
}

func (m *memberServiceMock) Register(ctx context.Context, req service.RegisterMemberRequest) (*models.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Member{ID: "m-1", FirstName: req.FirstName, Tier: models.TierBasic}, nil
}

func (m *memberServiceMock) Get(ctx context.Context, id string) (*models.Member, error) {
	return m.member, m.err
}

func (m *memberServiceMock) Delete(ctx context.Context, id string) (*models.MemberDeletion, error) {
	return m.deletion, m.err
}

type ledgerServiceMock struct {
	entry    *models.LedgerEntry
	tier     models.MembershipTier
	history  []models.Transaction
	err      error
	amount   int64
	page     int
	pageSize int
}

func (m *ledgerServiceMock) ApplyFunds(ctx context.Context, memberID string, amountCents int64) (*models.LedgerEntry, error) {
	m.amount = amountCents
	return m.entry, m.err
}

func (m *ledgerServiceMock) CurrentTier(ctx context.Context, memberID string) (models.MembershipTier, error) {
	return m.tier, m.err
}

func (m *ledgerServiceMock) History(ctx context.Context, memberID string, page, size int) ([]models.Transaction, *models.Pagination, error) {
	m.page, m.pageSize = page, size
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.history, &models.Pagination{Page: page, PageSize: size, TotalCount: len(m.history)}, nil
}

type enrollmentServiceMock struct {
	purchase *models.PackagePurchase
	outcome  models.EnrollOutcome
	classes  []models.Class
	err      error
}

func (m *enrollmentServiceMock) PurchasePackage(ctx context.Context, memberID, packageName string) (*models.PackagePurchase, error) {
	return m.purchase, m.err
}

func (m *enrollmentServiceMock) EnrollInClass(ctx context.Context, memberID, classID string) (models.EnrollOutcome, error) {
	return m.outcome, m.err
}

func (m *enrollmentServiceMock) ListMemberClasses(ctx context.Context, memberID string) ([]models.Class, error) {
	return m.classes, m.err
}

type scheduleServiceMock struct {
	class     *models.Class
	conflict  *models.ClassConflict
	err       error
	deletedID string
}

func (m *scheduleServiceMock) CreateCourse(ctx context.Context, req service.CreateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: "c-1", Category: req.Category, CatalogNum: req.CatalogNum}, m.err
}

func (m *scheduleServiceMock) ListCourses(ctx context.Context) ([]models.Course, error) {
	return []models.Course{}, m.err
}

func (m *scheduleServiceMock) CreateClass(ctx context.Context, req service.CreateClassRequest) (*models.Class, error) {
	return m.class, m.err
}

func (m *scheduleServiceMock) HasConflict(ctx context.Context, req service.ConflictCheckRequest) (*models.ClassConflict, error) {
	return m.conflict, m.err
}

func (m *scheduleServiceMock) DeleteClass(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

func (m *scheduleServiceMock) CreateTrainer(ctx context.Context, req service.CreateTrainerRequest) (*models.Trainer, error) {
	return &models.Trainer{ID: "t-1", FirstName: req.FirstName}, m.err
}

func (m *scheduleServiceMock) ListTrainers(ctx context.Context) ([]models.Trainer, error) {
	return []models.Trainer{}, m.err
}

func (m *scheduleServiceMock) ListTrainerClasses(ctx context.Context, trainerID string) ([]models.Class, error) {
	return []models.Class{}, m.err
}

type packageServiceMock struct {
	details  []models.PackageDetail
	memberID string
	err      error
}

func (m *packageServiceMock) Create(ctx context.Context, req service.CreatePackageRequest) (*models.PackageDetail, error) {
	return &models.PackageDetail{Package: models.Package{ID: "p-1", Name: req.Name, CostCents: req.CostCents}}, m.err
}

func (m *packageServiceMock) List(ctx context.Context, memberID string) ([]models.PackageDetail, error) {
	m.memberID = memberID
	return m.details, m.err
}

func (m *packageServiceMock) UpdateCost(ctx context.Context, name string, req service.UpdatePackageCostRequest) error {
	return m.err
}

func (m *packageServiceMock) Delete(ctx context.Context, name string) error {
	return m.err
}

type rentalServiceMock struct {
	entry *models.RentalLogEntry
	loans map[string]int
	err   error
	req   service.RentalRequest
}

func (m *rentalServiceMock) CreateItem(ctx context.Context, req service.CreateRentalItemRequest) (*models.RentalItem, error) {
	return &models.RentalItem{ID: "i-1", Name: req.Name, QuantityInStock: req.QuantityInStock}, m.err
}

func (m *rentalServiceMock) ListItems(ctx context.Context) ([]models.RentalItem, error) {
	return []models.RentalItem{}, m.err
}

func (m *rentalServiceMock) Checkout(ctx context.Context, req service.RentalRequest) (*models.RentalLogEntry, error) {
	m.req = req
	return m.entry, m.err
}

func (m *rentalServiceMock) Return(ctx context.Context, req service.RentalRequest) (*models.RentalLogEntry, error) {
	m.req = req
	return m.entry, m.err
}

func (m *rentalServiceMock) OutstandingLoans(ctx context.Context, memberID string) (map[string]int, error) {
	return m.loans, m.err
}

type reportServiceMock struct {
	negative []models.NegativeBalanceMember
	hours    *models.TrainerHoursReport
	slots    []models.ScheduleSlot
	err      error
	year     int
	month    time.Month
}

func (m *reportServiceMock) NegativeBalanceMembers(ctx context.Context) ([]models.NegativeBalanceMember, error) {
	return m.negative, m.err
}

func (m *reportServiceMock) TrainerMonthlyHours(ctx context.Context, year int, month time.Month) (*models.TrainerHoursReport, error) {
	m.year, m.month = year, month
	return m.hours, m.err
}

func (m *reportServiceMock) MemberSchedule(ctx context.Context, memberID string, year int, month time.Month) ([]models.ScheduleSlot, error) {
	m.year, m.month = year, month
	return m.slots, m.err
}

type exportServiceMock struct {
	job     *models.ExportJob
	payload []byte
	err     error
}

func (m *exportServiceMock) Request(ctx context.Context, req service.ExportRequest) (*models.ExportJob, error) {
	return m.job, m.err
}

func (m *exportServiceMock) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	return m.job, m.err
}

func (m *exportServiceMock) Download(ctx context.Context, id string) ([]byte, *models.ExportJob, error) {
	return m.payload, m.job, m.err
}
