package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Keoroanthony/go-food-delivery/internal/auth"
	"github.com/Keoroanthony/go-food-delivery/internal/db"
	"github.com/Keoroanthony/go-food-delivery/internal/handlers"
	"github.com/Keoroanthony/go-food-delivery/internal/models"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

const testSecret = "test-secret-key"

type rejectCounter map[string]int

func (r rejectCounter) Reject(code string) { r[code]++ }

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	rejects rejectCounter

	customer      models.User
	otherCustomer models.User
	owner         models.User
	otherOwner    models.User
	admin         models.User
	restaurant    models.Restaurant
	burger        models.Meal
	fries         models.Meal
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Initialize an in-memory SQLite database
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect test database")
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	env := &testEnv{db: testDB, rejects: rejectCounter{}}
	env.seed(t)

	store := db.NewStore(testDB)
	svc := orders.NewService(orders.Deps{
		Users:       store,
		Restaurants: store,
		Meals:       store,
		Coupons:     store,
		Blocks:      store,
		Orders:      store,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(testSecret))))

	api := r.Group("/api")
	api.Use(auth.RequireAuth(store))
	handlers.NewOrderHandler(svc, zap.NewNop(), env.rejects).Register(api)
	handlers.NewOwnerHandler(store, zap.NewNop(), env.rejects).Register(api)

	env.router = r
	return env
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	e.customer = models.User{Name: "Test Customer", Email: "test@example.com", Phone: "1234567890"}
	e.otherCustomer = models.User{Name: "Other Customer", Email: "other@example.com"}
	e.owner = models.User{Name: "Owner", Email: "owner@example.com", Role: models.RoleOwner}
	e.otherOwner = models.User{Name: "Other Owner", Email: "other-owner@example.com", Role: models.RoleOwner}
	e.admin = models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	for _, u := range []*models.User{&e.customer, &e.otherCustomer, &e.owner, &e.otherOwner, &e.admin} {
		require.NoError(t, e.db.Create(u).Error)
	}

	e.restaurant = models.Restaurant{Name: "Grill House", OwnerID: e.owner.ID}
	require.NoError(t, e.db.Create(&e.restaurant).Error)

	e.burger = models.Meal{RestaurantID: e.restaurant.ID, Name: "Burger", Price: decimal.RequireFromString("12.50")}
	e.fries = models.Meal{RestaurantID: e.restaurant.ID, Name: "Fries", Price: decimal.RequireFromString("5.00")}
	require.NoError(t, e.db.Create(&e.burger).Error)
	require.NoError(t, e.db.Create(&e.fries).Error)

	coupon := models.Coupon{Code: "SAVE10", DiscountPercent: 10, Active: true}
	require.NoError(t, e.db.Create(&coupon).Error)
}

func createRequest(method, path string, body interface{}) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// sessionCookie logs userID in by building the session cookie the
// middleware expects. A nil user yields an empty session.
func sessionCookie(userID *uuid.UUID) string {
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(testSecret)))(tempC)

	session := sessions.Default(tempC)
	if userID != nil {
		session.Set(auth.SessionKey, userID.String())
	} else {
		session.Delete(auth.SessionKey)
	}
	_ = session.Save()
	return tempW.Header().Get("Set-Cookie")
}

func (e *testEnv) perform(method, path string, body interface{}, userID *uuid.UUID) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := createRequest(method, path, body)
	req.Header.Set("Cookie", sessionCookie(userID))
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) as(u models.User) *uuid.UUID {
	id := u.ID
	return &id
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
