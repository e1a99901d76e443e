// internal/workers/placement/compute-home-matches/handler_test.go
package computehomematches

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"placement-workers/internal/common/config"
	"placement-workers/internal/common/errors"
	"placement-workers/internal/common/logger"
	"placement-workers/internal/models"
	"placement-workers/internal/repository"
	"placement-workers/internal/search"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

type stubIndexer struct {
	docs []search.MatchDocument
	err  error
}

func (s *stubIndexer) IndexName() string { return "placement-matches" }

func (s *stubIndexer) Index(_ context.Context, doc search.MatchDocument) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.docs = append(s.docs, doc)
	return "doc-1", nil
}

type fixture struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	redis   *miniredis.Miniredis
	indexer *stubIndexer
}

func newFixture(t *testing.T, recordEvents bool) *fixture {
	db, mock := setupMockDB(t)
	rdb, mr := setupRedis(t)
	indexer := &stubIndexer{}

	cfg := DefaultConfig()
	cfg.RecordEvents = recordEvents

	h := NewHandler(cfg, Dependencies{
		Referrals: repository.NewReferralRepository(db),
		Homes:     repository.NewCachedHomes(repository.NewHomeRepository(db), rdb, "homes:all", time.Minute),
		Threads:   repository.NewThreadRepository(db),
		Events:    repository.NewEventRepository(db),
		Indexer:   indexer,
	}, &testLogger{t: t})

	return &fixture{handler: h, mock: mock, redis: mr, indexer: indexer}
}

var (
	referralColumns = []string{"id", "child_profile", "needs", "legal_status"}
	homeColumns     = []string{"id", "name", "location", "free_beds", "constraints", "capabilities", "is_registered"}
)

func expectReferral(mock sqlmock.Sqlmock, profile, legal string) {
	var legalCol interface{}
	if legal != "" {
		legalCol = []byte(legal)
	}
	mock.ExpectQuery(`FROM referrals WHERE id = \$1`).
		WithArgs("ref-1").
		WillReturnRows(sqlmock.NewRows(referralColumns).
			AddRow("ref-1", []byte(profile), []byte(`{"trauma":true}`), legalCol))
}

func expectHomes(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM homes`).
		WillReturnRows(sqlmock.NewRows(homeColumns).
			AddRow("h-2", "Elm House", "York", 0,
				[]byte(`{"minAge":8,"maxAge":17,"genderAllowed":["male","female"]}`),
				[]byte(`{}`), nil).
			AddRow("h-1", "Oak House", "Leeds", 2,
				[]byte(`{"minAge":10,"maxAge":16,"genderAllowed":["male","female"]}`),
				[]byte(`{"traumaInformed":true}`), nil))
}

func expectThreads(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT home_id, id FROM threads`).
		WithArgs("ref-1").
		WillReturnRows(sqlmock.NewRows([]string{"home_id", "id"}).AddRow("h-1", "t-1"))
}

const sam = `{"name":"Sam","age":14,"gender":"male","location":"Leeds","localAuthority":"Leeds"}`

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_RanksHomes(t *testing.T) {
	f := newFixture(t, true)

	expectReferral(f.mock, sam, "")
	expectHomes(f.mock)
	expectThreads(f.mock)
	f.mock.ExpectExec(`INSERT INTO events`).
		WithArgs(sqlmock.AnyArg(), "ref-1", "MATCHES_COMPUTED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := f.handler.Execute(context.Background(), &Input{ReferralID: "ref-1"})
	require.NoError(t, err)

	assert.Equal(t, "ref-1", output.ReferralID)
	assert.Equal(t, 2, output.TotalHomes)
	assert.Equal(t, 1, output.EligibleCount)
	assert.Equal(t, "h-1", output.TopHomeID)

	require.Len(t, output.Matches, 2)
	top := output.Matches[0]
	assert.Equal(t, "h-1", top.HomeID)
	assert.True(t, top.Eligible)
	assert.Equal(t, 75, top.Score)
	require.NotNil(t, top.ExistingThreadID)
	assert.Equal(t, "t-1", *top.ExistingThreadID)

	assert.Equal(t, "h-2", output.Matches[1].HomeID)
	assert.False(t, output.Matches[1].Eligible)
	assert.Equal(t, 0, output.Matches[1].Score)

	require.Len(t, f.indexer.docs, 1)
	assert.Equal(t, "ref-1", f.indexer.docs[0].ReferralID)
	assert.Equal(t, "h-1", f.indexer.docs[0].TopHomeID)
	assert.False(t, f.indexer.docs[0].DoLApplies)

	assert.True(t, f.redis.Exists("homes:all"))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Execute_UsesCachedHomes(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.redis.Set("homes:all",
		`[{"id":"h-9","name":"Ash House","location":"Hull","freeBeds":1,`+
			`"constraints":{"minAge":0,"maxAge":18,"genderAllowed":["male"]},"capabilities":{}}]`))

	expectReferral(f.mock, sam, "")
	expectThreads(f.mock)

	output, err := f.handler.Execute(context.Background(), &Input{ReferralID: "ref-1"})
	require.NoError(t, err)

	require.Len(t, output.Matches, 1)
	assert.Equal(t, "h-9", output.TopHomeID)
	assert.Equal(t, 40, output.Matches[0].Score)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoEligibleHomes(t *testing.T) {
	f := newFixture(t, false)

	expectReferral(f.mock, `{"name":"Jo","age":17,"gender":"female","location":"Leeds"}`, "")
	expectHomes(f.mock)
	expectThreads(f.mock)

	output, err := f.handler.Execute(context.Background(), &Input{ReferralID: "ref-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, output.EligibleCount)
	assert.Empty(t, output.TopHomeID)
	assert.Equal(t, 2, output.TotalHomes)
}

func TestHandler_Execute_DoLReferral(t *testing.T) {
	f := newFixture(t, false)

	expectReferral(f.mock, sam, `{"applicable":true,"legalBasis":"SECURE_ACCOMMODATION_S25","placementRegistered":null}`)
	expectHomes(f.mock)
	expectThreads(f.mock)

	output, err := f.handler.Execute(context.Background(), &Input{ReferralID: "ref-1"})
	require.NoError(t, err)

	require.Len(t, f.indexer.docs, 1)
	assert.True(t, f.indexer.docs[0].DoLApplies)

	var codes []models.ReasonCode
	for _, r := range output.Matches[0].Reasons {
		codes = append(codes, r.Code)
	}
	assert.Contains(t, codes, models.ReasonCode("DOL_VERIFY_RESTRICTIONS"))
}

func TestHandler_Execute_SideEffectFailuresAreNonCritical(t *testing.T) {
	f := newFixture(t, true)
	f.indexer.err = stderrors.New("cluster unavailable")

	expectReferral(f.mock, sam, "")
	expectHomes(f.mock)
	expectThreads(f.mock)
	f.mock.ExpectExec(`INSERT INTO events`).WillReturnError(stderrors.New("disk full"))

	output, err := f.handler.Execute(context.Background(), &Input{ReferralID: "ref-1"})

	require.NoError(t, err)
	assert.Equal(t, "h-1", output.TopHomeID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		code      errors.ErrorCode
		retryable bool
	}{
		{
			name: "referral not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM referrals`).WillReturnRows(sqlmock.NewRows(referralColumns))
			},
			code: errors.ErrCodeReferralNotFound,
		},
		{
			name: "unknown gender",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, `{"name":"Sam","age":14,"gender":"other"}`, "")
			},
			code: errors.ErrCodeReferralDataIncomplete,
		},
		{
			name: "child age above 18",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, `{"name":"Sam","age":19,"gender":"male"}`, "")
			},
			code: errors.ErrCodeReferralDataIncomplete,
		},
		{
			name: "negative child age",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, `{"name":"Sam","age":-1,"gender":"male"}`, "")
			},
			code: errors.ErrCodeReferralDataIncomplete,
		},
		{
			name: "corrupt child profile",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, `{"age":`, "")
			},
			code: errors.ErrCodeReferralDataIncomplete,
		},
		{
			name: "homes query fails",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, sam, "")
				mock.ExpectQuery(`FROM homes`).WillReturnError(stderrors.New("connection reset"))
			},
			code:      errors.ErrCodeQueryExecutionFailed,
			retryable: true,
		},
		{
			name: "corrupt home row",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, sam, "")
				mock.ExpectQuery(`FROM homes`).
					WillReturnRows(sqlmock.NewRows(homeColumns).
						AddRow("h-1", "Oak House", "Leeds", 2, []byte(`[`), []byte(`{}`), nil))
			},
			code: errors.ErrCodeInternal,
		},
		{
			name: "threads query times out",
			setup: func(mock sqlmock.Sqlmock) {
				expectReferral(mock, sam, "")
				expectHomes(mock)
				mock.ExpectQuery(`FROM threads`).WillReturnError(context.DeadlineExceeded)
			},
			code:      errors.ErrCodeQueryTimeout,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			tt.setup(f.mock)

			_, err := f.handler.Execute(context.Background(), &Input{ReferralID: "ref-1"})

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.Empty(t, f.indexer.docs)
		})
	}
}

// ==========================
// Input & Config Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := NewHandler(nil, Dependencies{}, &testLogger{t: t})

	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{"valid", `{"referralId":"ref-1","other":"ignored"}`, false},
		{"missing referralId", `{}`, true},
		{"empty referralId", `{"referralId":""}`, true},
		{"wrong type", `{"referralId":42}`, true},
		{"not json", `{`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: tt.variables}}

			input, err := h.parseInput(job)
			if tt.wantErr {
				var stdErr *errors.StandardError
				require.ErrorAs(t, err, &stdErr)
				assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ref-1", input.ReferralID)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	appConfig := &config.Config{
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 2, Timeout: 5000},
		},
		Matching: config.MatchingConfig{RecordEvents: true},
	}

	cfg := ConfigFrom(appConfig)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.RecordEvents)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultConfig(), ConfigFrom(nil))

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())
}
