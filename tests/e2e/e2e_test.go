package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"veriflow/internal/database"
	"veriflow/internal/domain"
	"veriflow/internal/middleware"
	"veriflow/internal/modules/admin"
	"veriflow/internal/modules/auth"
	"veriflow/internal/modules/docnumber"
	"veriflow/internal/modules/document"
	"veriflow/internal/modules/notification"
	"veriflow/internal/modules/storage"
	"veriflow/internal/modules/verification"
	jwtsvc "veriflow/internal/pkg/jwt"
	"veriflow/internal/pkg/mailer"
	"veriflow/internal/repository"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
	adminToken string
	adminID    int64
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Minimal valid PNG signature, enough for content sniffing.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

var documentNumberFormat = regexp.MustCompile(`^\d{3}/\d{2}-\d{2}-\d{4}$`)

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.Migrate(db), "Failed to migrate schema")

	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRecordRepository(db)
	verificationRepo := repository.NewVerificationRecordRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)
	zlog := zap.NewNop()

	hub := notification.NewHub()
	dispatcher := notification.NewDispatcher(64, hub, notificationRepo, mailer.Noop{}, nil, zlog)
	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Close()
	})

	files := storage.NewService(t.TempDir(), "/uploads")

	authHandler := auth.NewHandler(auth.NewService(userRepo, jwtService, dispatcher))
	documentHandler := document.NewHandler(document.NewService(documentRepo, files, dispatcher, zlog))
	numberService := docnumber.NewService(counterRepo)
	verificationHandler := verification.NewHandler(verification.NewService(verificationRepo, numberService, files, dispatcher, zlog))
	notificationHandler := notification.NewHandler(notification.NewService(notificationRepo))
	adminHandler := admin.NewHandler(admin.NewService(userRepo, documentRepo, verificationRepo, notificationRepo, dispatcher, zlog))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	authHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		documentHandler.RegisterProtectedRoutes(protected)
		verificationHandler.RegisterProtectedRoutes(protected)
		notificationHandler.RegisterRoutes(protected)
	}

	review := v1.Group("/admin")
	review.Use(middleware.JWTAuth(jwtService), middleware.ReviewerOnly())
	{
		documentHandler.RegisterAdminRoutes(review)
		verificationHandler.RegisterAdminRoutes(review)
	}

	manage := v1.Group("/admin")
	manage.Use(middleware.JWTAuth(jwtService), middleware.AdminOnly())
	{
		adminHandler.RegisterAdminRoutes(manage)
	}

	// Seed the admin account every flow relies on
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	adminUser := &domain.User{
		Email:        "admin@test.local",
		PasswordHash: string(adminHash),
		FirstName:    "Admin",
		LastName:     "User",
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		KYCStatus:    domain.KYCVerified,
	}
	require.NoError(t, userRepo.Create(context.Background(), adminUser), "Failed to create admin user")

	adminToken, err := jwtService.GenerateToken(adminUser.ID, string(adminUser.Role))
	require.NoError(t, err)

	return &E2ETestSuite{
		router:     r,
		db:         db,
		jwtService: jwtService,
		adminToken: adminToken,
		adminID:    adminUser.ID,
	}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) makeUploadRequest(t *testing.T, path string, fields map[string]string, fileName string, file []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()

	var resp TestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	}
	return &resp
}

func record(t *testing.T, resp *TestResponse) map[string]interface{} {
	t.Helper()

	rec, ok := resp.Data["record"].(map[string]interface{})
	require.True(t, ok, "Response has no record object: %+v", resp)
	return rec
}

// registerVerifiedUser walks a fresh account through the full onboarding gate:
// register, admin KYC approval, login.
func (s *E2ETestSuite) registerVerifiedUser(t *testing.T, email string) (token string, userID int64) {
	t.Helper()

	w := s.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "Password123!",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "Registration failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	user := resp.Data["user"].(map[string]interface{})
	userID = int64(user["id"].(float64))

	w = s.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/users/%d/kyc", userID),
		map[string]interface{}{"status": "verified"}, s.adminToken)
	require.Equal(t, http.StatusOK, w.Code, "KYC approval failed: %s", w.Body.String())

	w = s.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "Password123!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "Login failed: %s", w.Body.String())

	resp = parseResponse(t, w)
	token = resp.Data["token"].(string)
	return token, userID
}

// =============================================================================
// Test Flow 1: Registration and the KYC login gate
// =============================================================================

func TestFlow1_RegistrationAndKYCGate(t *testing.T) {
	suite := setupTestSuite(t)

	var userID int64

	t.Run("POST /auth/register", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
			"first_name": "Asha",
			"last_name":  "Verma",
			"email":      "asha@test.com",
			"password":   "Password123!",
		}, "")

		assert.Equal(t, http.StatusCreated, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "asha@test.com", user["email"])
		assert.Equal(t, "pending", user["kyc_status"])
		userID = int64(user["id"].(float64))
	})

	t.Run("Login is blocked until KYC approval", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "asha@test.com",
			"password": "Password123!",
		}, "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_VERIFIED", resp.Error.Code)
	})

	t.Run("Admin approves KYC", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/users/%d/kyc", userID),
			map[string]interface{}{"status": "verified"}, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "verified", user["kyc_status"])
		assert.Equal(t, true, user["is_verified"])
	})

	var token string
	t.Run("POST /auth/login after approval", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "asha@test.com",
			"password": "Password123!",
		}, "")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		token = resp.Data["token"].(string)
		assert.NotEmpty(t, token)
	})

	t.Run("GET /users/me", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/users/me", nil, token)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "asha@test.com", user["email"])
		assert.Equal(t, "verified", user["kyc_status"])
	})

	t.Run("KYC decision lands in the notification feed", func(t *testing.T) {
		require.Eventually(t, func() bool {
			w := suite.makeRequest("GET", "/api/v1/notifications", nil, token)
			if w.Code != http.StatusOK {
				return false
			}
			resp := parseResponse(t, w)
			items, _ := resp.Data["notifications"].([]interface{})
			return len(items) > 0
		}, 2*time.Second, 20*time.Millisecond, "Expected a persisted KYC notification")
	})

	t.Run("Hold blocks login with a distinct error", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/users/%d/kyc", userID),
			map[string]interface{}{"status": "hold"}, suite.adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "asha@test.com",
			"password": "Password123!",
		}, "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ACCOUNT_ON_HOLD", resp.Error.Code)
	})
}

// =============================================================================
// Test Flow 2: Document registry lifecycle
// =============================================================================

func TestFlow2_DocumentLifecycle(t *testing.T) {
	suite := setupTestSuite(t)

	token, userID := suite.registerVerifiedUser(t, "docs@test.com")

	t.Run("POST /documents registers a record", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/documents", nil, token)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		rec := record(t, resp)
		assert.Equal(t, "INCOMPLETE", rec["overall_status"])
	})

	t.Run("Upload one document per category", func(t *testing.T) {
		uploads := []struct {
			category string
			fields   map[string]string
		}{
			{"personal", map[string]string{"document_type": "PAN", "document_number": "ABCDE1234F"}},
			{"financial", map[string]string{"document_type": "BANK_STATEMENT", "bank_name": "HDFC", "account_number": "0012345678"}},
			{"address", map[string]string{"document_type": "UTILITY_BILL", "address": "14 MG Road, Pune"}},
		}
		for _, up := range uploads {
			w := suite.makeUploadRequest(t, "/api/v1/documents/"+up.category, up.fields, "scan.png", pngBytes, token)
			require.Equal(t, http.StatusCreated, w.Code, "Upload to %s failed: %s", up.category, w.Body.String())
		}

		w := suite.makeRequest("GET", "/api/v1/documents", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		rec := record(t, parseResponse(t, w))

		// All three categories present but no verification linked yet
		assert.Equal(t, "INCOMPLETE", rec["overall_status"])
		progress := rec["verification_progress"].(map[string]interface{})
		assert.Equal(t, float64(0), progress["overallPercentage"])
	})

	t.Run("Wrong document type for category is rejected", func(t *testing.T) {
		w := suite.makeUploadRequest(t, "/api/v1/documents/personal",
			map[string]string{"document_type": "UTILITY_BILL"}, "scan.png", pngBytes, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_DOCUMENT_TYPE", resp.Error.Code)
	})

	t.Run("Linking a verification completes the fourth step", func(t *testing.T) {
		w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/admin/users/%d/documents/link", userID),
			map[string]interface{}{"document_number": "001/27-08-2026"}, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		rec := record(t, parseResponse(t, w))
		assert.Equal(t, "PENDING", rec["overall_status"])
	})

	t.Run("Admin verifies every entry", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/documents", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		rec := record(t, parseResponse(t, w))

		categories := map[string]string{
			"personal":  "personal_documents",
			"financial": "financial_documents",
			"address":   "address_documents",
		}
		for category, key := range categories {
			entries := rec[key].([]interface{})
			require.Len(t, entries, 1)
			entryID := entries[0].(map[string]interface{})["id"].(string)

			w := suite.makeRequest("POST", fmt.Sprintf("/api/v1/admin/users/%d/documents/verify", userID),
				map[string]interface{}{"category": category, "entry_id": entryID}, suite.adminToken)
			require.Equal(t, http.StatusOK, w.Code, "Verify %s entry failed: %s", category, w.Body.String())
		}

		w = suite.makeRequest("GET", "/api/v1/documents", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		rec = record(t, parseResponse(t, w))
		assert.Equal(t, "VERIFIED", rec["overall_status"])
		progress := rec["verification_progress"].(map[string]interface{})
		assert.Equal(t, float64(100), progress["overallPercentage"])
	})

	t.Run("Same-type personal upload replaces the old entry", func(t *testing.T) {
		w := suite.makeUploadRequest(t, "/api/v1/documents/personal",
			map[string]string{"document_type": "PAN", "document_number": "FGHIJ5678K"}, "scan2.png", pngBytes, token)
		require.Equal(t, http.StatusCreated, w.Code)

		rec := record(t, parseResponse(t, w))
		entries := rec["personal_documents"].([]interface{})
		require.Len(t, entries, 1)
		assert.Equal(t, "FGHIJ5678K", entries[0].(map[string]interface{})["document_number"])
	})

	t.Run("GET /documents/archive streams a zip", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/documents/archive", nil, token)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
		assert.NotZero(t, w.Body.Len())
	})

	t.Run("GET /admin/documents/statistics", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/documents/statistics", nil, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, parseResponse(t, w).Success)
	})
}

// =============================================================================
// Test Flow 3: Verification record workflow
// =============================================================================

func TestFlow3_VerificationWorkflow(t *testing.T) {
	suite := setupTestSuite(t)

	token, _ := suite.registerVerifiedUser(t, "field@test.com")

	var number string

	t.Run("POST /verifications allocates a document number", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/verifications", map[string]interface{}{
			"verification_type": []string{"RESIDENCE_VERIFICATION"},
		}, token)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, true, resp.Data["created"])

		rec := record(t, resp)
		number = rec["document_number"].(string)
		assert.Regexp(t, documentNumberFormat, number)
		assert.Equal(t, "DRAFT", rec["overall_status"])
	})

	t.Run("A draft cannot be reviewed", func(t *testing.T) {
		w := suite.makeRequest("PATCH", "/api/v1/admin/verifications/status", map[string]interface{}{
			"document_number":   number,
			"verification_type": "RESIDENCE_VERIFICATION",
			"status":            "VERIFIED",
		}, suite.adminToken)

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_REVIEWABLE", resp.Error.Code)
	})

	t.Run("Filling every section submits the record", func(t *testing.T) {
		sections := []struct {
			name    string
			payload map[string]interface{}
		}{
			{"administrativeDetails", map[string]interface{}{"dateOfReceipt": "2026-08-20T00:00:00Z", "referenceNo": "REF-1001"}},
			{"addressInformation", map[string]interface{}{"presentAddress": map[string]interface{}{"city": "Pune", "street": "14 MG Road"}}},
			{"propertyDetails", map[string]interface{}{"ownershipResidence": "OWNED"}},
			{"personalInformation", map[string]interface{}{"dateOfBirth": "1991-03-12T00:00:00Z"}},
			{"verificationStatus", map[string]interface{}{"status": "PENDING"}},
			{"commentsAuthorization", map[string]interface{}{"verifiersName": "R. Iyer"}},
		}

		for _, s := range sections {
			w := suite.makeRequest("PATCH", "/api/v1/verifications/section", map[string]interface{}{
				"document_number":   number,
				"verification_type": "RESIDENCE_VERIFICATION",
				"section":           s.name,
				"payload":           s.payload,
			}, token)
			require.Equal(t, http.StatusOK, w.Code, "Section %s failed: %s", s.name, w.Body.String())
		}

		// Document upload is the seventh completion step
		w := suite.makeUploadRequest(t, "/api/v1/verifications/documents",
			map[string]string{"document_number": number, "document_type": "SITE_PHOTO"},
			"site.png", pngBytes, token)
		require.Equal(t, http.StatusCreated, w.Code, "Attach failed: %s", w.Body.String())

		rec := record(t, parseResponse(t, w))
		assert.Equal(t, "SUBMITTED", rec["overall_status"])
		steps := rec["completion_steps"].(map[string]interface{})
		for name, done := range steps {
			assert.Equal(t, true, done, "step %s should be complete", name)
		}
	})

	t.Run("Unknown section fields are rejected", func(t *testing.T) {
		w := suite.makeRequest("PATCH", "/api/v1/verifications/section", map[string]interface{}{
			"document_number":   number,
			"verification_type": "RESIDENCE_VERIFICATION",
			"section":           "propertyDetails",
			"payload":           map[string]interface{}{"squareFootage": 1200},
		}, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_PAYLOAD", resp.Error.Code)
	})

	t.Run("Same number merges a second type without resetting progress", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/verifications", map[string]interface{}{
			"document_number":   number,
			"verification_type": []string{"OFFICE_VERIFICATION"},
		}, token)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.Equal(t, false, resp.Data["created"])

		rec := record(t, resp)
		types := rec["verification_type"].([]interface{})
		assert.Len(t, types, 2)
		assert.Equal(t, "SUBMITTED", rec["overall_status"])
	})

	t.Run("Partial decisions keep the record in progress", func(t *testing.T) {
		w := suite.makeRequest("PATCH", "/api/v1/admin/verifications/status", map[string]interface{}{
			"document_number":   number,
			"verification_type": "RESIDENCE_VERIFICATION",
			"status":            "VERIFIED",
			"verified_by":       "R. Iyer",
		}, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		rec := record(t, parseResponse(t, w))
		assert.Equal(t, "IN_PROGRESS", rec["overall_status"])
	})

	t.Run("All types verified verifies the record", func(t *testing.T) {
		w := suite.makeRequest("PATCH", "/api/v1/admin/verifications/status", map[string]interface{}{
			"document_number":   number,
			"verification_type": "OFFICE_VERIFICATION",
			"status":            "VERIFIED",
			"verified_by":       "R. Iyer",
		}, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		rec := record(t, parseResponse(t, w))
		assert.Equal(t, "VERIFIED", rec["overall_status"])
	})

	t.Run("GET /verifications/record by number", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/verifications/record?document_number="+number, nil, token)

		assert.Equal(t, http.StatusOK, w.Code)
		rec := record(t, parseResponse(t, w))
		assert.Equal(t, number, rec["document_number"])
	})

	t.Run("GET /admin/verifications/statistics", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/verifications/statistics", nil, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, parseResponse(t, w).Success)
	})
}

// =============================================================================
// Test Flow 4: Admin operations and role boundaries
// =============================================================================

func TestFlow4_AdminOperations(t *testing.T) {
	suite := setupTestSuite(t)

	userToken, userID := suite.registerVerifiedUser(t, "plain@test.com")

	t.Run("Admin routes reject missing and insufficient credentials", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/users", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = suite.makeRequest("GET", "/api/v1/admin/users", nil, userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	})

	t.Run("GET /admin/users", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/users", nil, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.GreaterOrEqual(t, resp.Data["total"].(float64), float64(2))
	})

	var verifierToken string
	t.Run("PATCH /admin/users/:id/role promotes to verifier", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/users/%d/role", userID),
			map[string]interface{}{"role": "verifier"}, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "verifier", user["role"])

		var err error
		verifierToken, err = suite.jwtService.GenerateToken(userID, "verifier")
		require.NoError(t, err)
	})

	t.Run("Verifiers reach review routes but not user management", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/documents", nil, verifierToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", "/api/v1/admin/users", nil, verifierToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admins cannot change their own role", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/users/%d/role", suite.adminID),
			map[string]interface{}{"role": "user"}, suite.adminToken)

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "SELF_DEMOTION", resp.Error.Code)
	})

	t.Run("Admins cannot delete themselves", func(t *testing.T) {
		w := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/admin/users/%d", suite.adminID), nil, suite.adminToken)

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "SELF_DELETE", resp.Error.Code)
	})

	t.Run("DELETE /admin/users/:id cascades", func(t *testing.T) {
		w := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/admin/users/%d", userID), nil, suite.adminToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", fmt.Sprintf("/api/v1/admin/users/%d", userID), nil, suite.adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /admin/statistics", func(t *testing.T) {
		w := suite.makeRequest("GET", "/api/v1/admin/statistics", nil, suite.adminToken)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data["statistics"])
	})
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
