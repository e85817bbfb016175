package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/core/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/export"
	"github.com/SscSPs/phone_store_caisse/internal/middleware"
	"github.com/SscSPs/phone_store_caisse/internal/platform/config"
	"github.com/SscSPs/phone_store_caisse/internal/platform/lock"
	"github.com/SscSPs/phone_store_caisse/internal/repositories/memory"
	"github.com/SscSPs/phone_store_caisse/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

type HandlersTestSuite struct {
	suite.Suite
	router       *gin.Engine
	services     *portssvc.ServiceContainer
	adminToken   string
	cashierToken string
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost

	cfg := &config.Config{
		IsProduction:       true,
		JWTSecret:          "test-secret",
		JWTExpiryDuration:  time.Hour,
		JWTIssuer:          "caisse-test",
		RateLimit:          "1000-M",
		LoginRateLimit:     "1000-M",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		ExportMaxRows:      3,
		DefaultPageSize:    10,
		MaxPageSize:        100,
	}
	s.services = services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()), lock.Noop())

	s.router = gin.New()
	s.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(RegisterRoutes(s.router, cfg, s.services, nil))

	s.adminToken = s.createUserAndLogin("boss", domain.RoleAdmin)
	s.cashierToken = s.createUserAndLogin("till1", domain.RoleCashier)
}

func (s *HandlersTestSuite) createUserAndLogin(username string, role domain.UserRole) string {
	_, err := s.services.Auth.CreateUser(s.T().Context(), dto.CreateUserRequest{
		Username: username,
		Password: "password123",
		Role:     role,
	})
	s.Require().NoError(err)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": "password123"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (s *HandlersTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) createCaisse(name string) dto.CaisseResponse {
	w := s.do(http.MethodPost, "/api/v1/caisse/", s.adminToken, map[string]string{"name": name})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var c dto.CaisseResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func (s *HandlersTestSuite) mutate(caisseID int64, kind, token string, body any) (*httptest.ResponseRecorder, dto.MutationResponse) {
	w := s.do(http.MethodPost, fmt.Sprintf("/api/v1/caisse/%d/%s/", caisseID, kind), token, body)
	var resp dto.MutationResponse
	if w.Code == http.StatusCreated {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestLogin_WrongPassword() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "boss", "password": "nope-nope"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestRequiresToken() {
	w := s.do(http.MethodGet, "/api/v1/caisse/", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/caisse/", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestMainTillScenario() {
	till := s.createCaisse("Main Till")
	s.Equal("0.00", till.CurrentBalance)

	w, dep := s.mutate(till.ID, "deposit", s.cashierToken, map[string]string{"amount": "100", "description": "float"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("100.00", dep.Caisse.CurrentBalance)
	s.Equal("100.00", dep.Operation.BalanceAfter)
	s.Equal(domain.Deposit, dep.Operation.OperationType)

	w, wd := s.mutate(till.ID, "withdraw", s.cashierToken, map[string]string{"amount": "30"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("70.00", wd.Caisse.CurrentBalance)
	s.Equal("-30.00", wd.Operation.Amount)

	w, _ = s.mutate(till.ID, "withdraw", s.cashierToken, map[string]string{"amount": "80"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "insufficient funds")

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse/%d/", till.ID), s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail dto.CaisseDetailResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal("70.00", detail.CurrentBalance)
	s.Require().Len(detail.Operations, 2)
	s.Equal(domain.Withdrawal, detail.Operations[0].OperationType)
	s.Equal(domain.Deposit, detail.Operations[1].OperationType)

	w = s.do(http.MethodGet, "/api/v1/caisse/", s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListCaissesResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Require().Len(list.Results, 1)
	s.Equal("Main Till", list.Results[0].Name)
}

func (s *HandlersTestSuite) TestMutation_RejectsBadAmounts() {
	till := s.createCaisse("Main Till")

	for _, body := range []any{
		map[string]string{"amount": "0"},
		map[string]string{"amount": "-5"},
		map[string]string{"amount": "abc"},
		map[string]string{"description": "missing amount"},
		map[string]string{"amount": "1.005"},
	} {
		w, _ := s.mutate(till.ID, "deposit", s.cashierToken, body)
		s.Equal(http.StatusBadRequest, w.Code, "body %v", body)
	}

	w := s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse/%d/", till.ID), s.cashierToken, nil)
	var detail dto.CaisseDetailResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal("0.00", detail.CurrentBalance)
	s.Empty(detail.Operations)
}

func (s *HandlersTestSuite) TestMutation_UnknownCaisse() {
	w, _ := s.mutate(999, "deposit", s.cashierToken, map[string]string{"amount": "10"})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/caisse/abc/", s.cashierToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestSaleAndPurchasePayment() {
	till := s.createCaisse("Shop")

	w, _ := s.mutate(till.ID, "sale", s.cashierToken, map[string]string{"amount": "50"})
	s.Equal(http.StatusBadRequest, w.Code, "reference is required")

	w, sale := s.mutate(till.ID, "sale", s.cashierToken, map[string]string{"amount": "250.50", "reference_id": "S-1"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Require().NotNil(sale.Operation.ReferenceID)
	s.Equal("S-1", *sale.Operation.ReferenceID)

	w, pay := s.mutate(till.ID, "purchase-payment", s.cashierToken, map[string]string{"amount": "200", "reference_id": "P-7"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(domain.PurchasePayment, pay.Operation.OperationType)
	s.Equal("50.50", pay.Caisse.CurrentBalance)
}

func (s *HandlersTestSuite) TestAdjust_AdminOnly() {
	till := s.createCaisse("Main Till")
	body := map[string]string{"amount": "-12.50", "description": "count short"}

	w, _ := s.mutate(till.ID, "adjust", s.cashierToken, body)
	s.Equal(http.StatusForbidden, w.Code)

	w, adj := s.mutate(till.ID, "adjust", s.adminToken, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("-12.50", adj.Caisse.CurrentBalance)
	s.Equal(domain.Adjustment, adj.Operation.OperationType)
}

func (s *HandlersTestSuite) TestListOperations_Pagination() {
	till := s.createCaisse("Main Till")
	for i := 1; i <= 12; i++ {
		w, _ := s.mutate(till.ID, "deposit", s.cashierToken, map[string]string{"amount": fmt.Sprint(i)})
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	var page dto.PaginatedOperationsResponse
	w := s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse-operations/?caisse=%d&page_size=5", till.ID), s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.EqualValues(12, page.Count)
	s.Len(page.Results, 5)
	s.Equal("12.00", page.Results[0].Amount, "newest first")
	s.Nil(page.Previous)
	s.Require().NotNil(page.Next)

	next, err := url.Parse(*page.Next)
	s.Require().NoError(err)
	s.Equal("http", next.Scheme)
	s.Equal("example.com", next.Host)
	s.Equal("2", next.Query().Get("page"))
	s.Equal("5", next.Query().Get("page_size"))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse-operations/?caisse=%d&page_size=5&page=2", till.ID), s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	page = dto.PaginatedOperationsResponse{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().NotNil(page.Previous)
	prev, err := url.Parse(*page.Previous)
	s.Require().NoError(err)
	s.False(prev.Query().Has("page"), "link to the first page drops the page parameter")

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse-operations/?caisse=%d&page_size=5&page=4", till.ID), s.cashierToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestListOperations_EmptyFirstPage() {
	w := s.do(http.MethodGet, "/api/v1/caisse-operations/", s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page dto.PaginatedOperationsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Zero(page.Count)
	s.NotNil(page.Results)
	s.Nil(page.Next)
}

func (s *HandlersTestSuite) TestListOperations_Filters() {
	till := s.createCaisse("Main Till")
	s.mutate(till.ID, "deposit", s.cashierToken, map[string]string{"amount": "100", "description": "Opening float"})
	s.mutate(till.ID, "withdraw", s.cashierToken, map[string]string{"amount": "20", "description": "Coffee"})

	w := s.do(http.MethodGet, "/api/v1/caisse-operations/?operation_type=withdrawal", s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page dto.PaginatedOperationsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().Len(page.Results, 1)
	s.Equal("Coffee", page.Results[0].Description)

	w = s.do(http.MethodGet, "/api/v1/caisse-operations/?search=float", s.cashierToken, nil)
	page = dto.PaginatedOperationsResponse{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().Len(page.Results, 1)
	s.Equal(domain.Deposit, page.Results[0].OperationType)

	w = s.do(http.MethodGet, "/api/v1/caisse-operations/?operation_type=REFUND", s.cashierToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/caisse-operations/?start_date=yesterday", s.cashierToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestExportOperations() {
	till := s.createCaisse("Main Till")
	s.mutate(till.ID, "deposit", s.cashierToken, map[string]string{"amount": "100"})

	w := s.do(http.MethodGet, "/api/v1/caisse-operations/export/", s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(export.ContentType, w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), ".xlsx")
	s.Equal("1", w.Header().Get("X-Total-Count"))
	s.Empty(w.Header().Get("X-Export-Truncated"))
	s.NotZero(w.Body.Len())
}

func (s *HandlersTestSuite) TestExportOperations_FlagsTruncation() {
	till := s.createCaisse("Main Till")
	for i := 0; i < 4; i++ {
		w, _ := s.mutate(till.ID, "deposit", s.cashierToken, map[string]string{"amount": "10"})
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/v1/caisse-operations/export/", s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("4", w.Header().Get("X-Total-Count"))
	s.Equal("true", w.Header().Get("X-Export-Truncated"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	s.Require().NoError(err)
	s.Len(rows, 4, "header plus the capped rows")
}

func (s *HandlersTestSuite) TestSummary() {
	till := s.createCaisse("Main Till")
	s.mutate(till.ID, "deposit", s.cashierToken, map[string]string{"amount": "100"})
	s.mutate(till.ID, "sale", s.cashierToken, map[string]string{"amount": "50", "reference_id": "S-1"})
	s.mutate(till.ID, "withdraw", s.cashierToken, map[string]string{"amount": "30"})

	w := s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse/%d/summary/", till.ID), s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var summary dto.SummaryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &summary))
	s.EqualValues(3, summary.OperationCount)
	s.Equal("150.00", summary.TotalInflow)
	s.Equal("30.00", summary.TotalOutflow)
	s.Equal("120.00", summary.NetChange)
	s.Equal("120.00", summary.CurrentBalance)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/caisse/%d/summary/?start_date=2001-13-40", till.ID), s.cashierToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestCreateUser_AdminOnly() {
	body := map[string]string{"username": "till2", "password": "password123", "role": "CASHIER"}

	w := s.do(http.MethodPost, "/api/v1/users/", s.cashierToken, body)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/users/", s.adminToken, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/users/", s.adminToken, body)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersTestSuite) TestGetMe() {
	w := s.do(http.MethodGet, "/api/v1/users/me", s.cashierToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me dto.UserResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &me))
	s.Equal("till1", me.Username)
	s.Equal(domain.RoleCashier, me.Role)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func TestCorsConfig(t *testing.T) {
	c := corsConfig([]string{"*"})
	assert.True(t, c.AllowAllOrigins)
	assert.False(t, c.AllowCredentials)

	c = corsConfig([]string{"http://localhost:3000"})
	require.Equal(t, []string{"http://localhost:3000"}, c.AllowOrigins)
	assert.True(t, c.AllowCredentials)
}
