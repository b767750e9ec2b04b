package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/middleware"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	"github.com/noah-isme/pillar-academy-api/internal/service"
)

type stubLearnerRepo struct {
	learner   *models.Learner
	completed []string
}

func (s *stubLearnerRepo) FindByID(_ context.Context, id string) (*models.Learner, error) {
	if s.learner == nil || s.learner.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *s.learner
	return &clone, nil
}

func (s *stubLearnerRepo) CompletedModules(_ context.Context, _ string) ([]string, error) {
	return append([]string(nil), s.completed...), nil
}

func (s *stubLearnerRepo) AddCompletedModules(_ context.Context, _ string, moduleIDs []string) error {
	s.completed = append(s.completed, moduleIDs...)
	return nil
}

func (s *stubLearnerRepo) CreateAuditLog(_ context.Context, _ *models.AuditLog) error {
	return nil
}

type stubExamRepo struct{}

func (stubExamRepo) LatestByLearner(_ context.Context, _ string) ([]models.ExamSubmission, error) {
	return nil, nil
}

func (stubExamRepo) FindLatest(_ context.Context, _ string, _ int) (*models.ExamSubmission, error) {
	return nil, sql.ErrNoRows
}

func injectClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	}
}

func buildPillarRouter(repo *stubLearnerRepo, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewProgressionService(repo, stubExamRepo{}, nil, nil, service.ProgressConfig{})
	h := NewPillarHandler(svc)

	router := gin.New()
	router.Use(injectClaims(claims))
	router.GET("/pillars", h.Overview)
	router.POST("/pillars/:index/advance", h.Advance)
	router.POST("/modules/:id/complete", h.CompleteModule)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func premiumLearner(approved int) *models.Learner {
	return &models.Learner{
		ID:               "learner-1",
		Email:            "learner@example.com",
		Role:             models.RoleLearner,
		Active:           true,
		SubscriptionTier: models.TierPremium,
		ApprovedPillar:   approved,
	}
}

func learnerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "learner-1", Role: models.RoleLearner, Email: "learner@example.com"}
}

func TestPillarOverviewRoute(t *testing.T) {
	repo := &stubLearnerRepo{learner: premiumLearner(3)}
	router := buildPillarRouter(repo, learnerClaims())

	req, _ := http.NewRequest(http.MethodGet, "/pillars", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"status":"COMPLETED"`)
	require.Contains(t, resp.Body.String(), `"status":"UNLOCKED"`)
	require.Contains(t, resp.Body.String(), `"status":"LOCKED"`)
}

func TestPillarOverviewRequiresAuth(t *testing.T) {
	repo := &stubLearnerRepo{learner: premiumLearner(1)}
	router := buildPillarRouter(repo, nil)

	req, _ := http.NewRequest(http.MethodGet, "/pillars", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdvanceRouteExamRequired(t *testing.T) {
	repo := &stubLearnerRepo{
		learner:   premiumLearner(1),
		completed: catalog.Modules(1),
	}
	router := buildPillarRouter(repo, learnerClaims())

	req, _ := http.NewRequest(http.MethodPost, "/pillars/1/advance", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"action":"EXAM_REQUIRED"`)
}

func TestAdvanceRouteRejectsBadIndex(t *testing.T) {
	repo := &stubLearnerRepo{learner: premiumLearner(1)}
	router := buildPillarRouter(repo, learnerClaims())

	req, _ := http.NewRequest(http.MethodPost, "/pillars/zero/advance", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCompleteModuleRouteLocked(t *testing.T) {
	repo := &stubLearnerRepo{learner: premiumLearner(1)}
	router := buildPillarRouter(repo, learnerClaims())

	modules := catalog.Modules(2)
	require.NotEmpty(t, modules)

	req, _ := http.NewRequest(http.MethodPost, "/modules/"+modules[0]+"/complete", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCompleteModuleRouteSuccess(t *testing.T) {
	repo := &stubLearnerRepo{learner: premiumLearner(2)}
	router := buildPillarRouter(repo, learnerClaims())

	modules := catalog.Modules(2)
	require.NotEmpty(t, modules)

	req, _ := http.NewRequest(http.MethodPost, "/modules/"+modules[0]+"/complete", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Contains(t, repo.completed, modules[0])
}
