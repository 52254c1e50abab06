package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Hedwigsan/cookshare/internal/config"
	"github.com/Hedwigsan/cookshare/internal/database"
	"github.com/Hedwigsan/cookshare/internal/models"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestApp(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, database.Migrate(db, logger))

	cfg := &config.Config{
		GoEnv:          "development",
		HTTPPort:       8080,
		SessionSecret:  "0123456789abcdef0123456789abcdef",
		SessionMaxAge:  time.Hour,
		MediaDir:       t.TempDir(),
		StaticDir:      "../../web/static",
		TemplateGlob:   "../../web/templates/*.html",
		UploadMaxBytes: 10 << 20,
		LoginRateLimit: 1000,
		LoginRateBurst: 1000,
		LogLevel:       "info",
	}

	r, err := NewRouter(cfg, db, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, db
}

// browser is a cookie-carrying client that never follows redirects, so tests
// can assert on the 303s themselves.
type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (b *browser) postForm(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Post(b.base+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	resp.Body.Close()
	return resp, string(body)
}

// csrfToken fetches the given page and pulls the embedded form token.
func (b *browser) csrfToken(path string) string {
	b.t.Helper()
	resp, body := b.get(path)
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
	m := csrfPattern.FindStringSubmatch(body)
	require.NotNil(b.t, m, "no csrf token on %s", path)
	return m[1]
}

func (b *browser) signup(email, password string) {
	b.t.Helper()
	resp, _ := b.postForm("/signup", url.Values{
		"csrf_token": {b.csrfToken("/signup")},
		"email":      {email},
		"password":   {password},
	})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/", resp.Header.Get("Location"))
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	srv, db := newTestApp(t)
	b := newBrowser(t, srv)

	b.signup("cook@example.com", "supersecret")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	resp, body := b.get("/account")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "cook@example.com")

	resp, _ = b.postForm("/logout", url.Values{"csrf_token": {b.csrfToken("/account")}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = b.get("/account")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// Fresh browser logs back in with the same credentials.
	b2 := newBrowser(t, srv)
	resp, _ = b2.postForm("/login", url.Values{
		"csrf_token": {b2.csrfToken("/login")},
		"email":      {"cook@example.com"},
		"password":   {"supersecret"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginWithWrongPasswordReRendersForm(t *testing.T) {
	srv, _ := newTestApp(t)
	b := newBrowser(t, srv)
	b.signup("cook@example.com", "supersecret")

	b2 := newBrowser(t, srv)
	resp, body := b2.postForm("/login", url.Values{
		"csrf_token": {b2.csrfToken("/login")},
		"email":      {"cook@example.com"},
		"password":   {"wrong-password"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Wrong email or password.")
}

func TestSignupValidationErrors(t *testing.T) {
	srv, db := newTestApp(t)
	b := newBrowser(t, srv)

	resp, body := b.postForm("/signup", url.Values{
		"csrf_token": {b.csrfToken("/signup")},
		"email":      {"not-an-email"},
		"password":   {"short"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "must be a valid email address")
	assert.Contains(t, body, "must be at least 8 characters")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeLifecycle(t *testing.T) {
	srv, db := newTestApp(t)
	b := newBrowser(t, srv)
	b.signup("cook@example.com", "supersecret")

	resp, body := b.postForm("/recipes", url.Values{
		"csrf_token":         {b.csrfToken("/recipes/new")},
		"title":              {"Shakshuka"},
		"description":        {"eggs in tomato sauce"},
		"ingredients_name":   {"egg", "tomato"},
		"ingredients_amount": {"3", "400"},
		"ingredients_unit":   {"pcs", "g"},
		"steps_body":         {"simmer the sauce", "poach the eggs"},
		"tags_csv":           {"breakfast, eggs"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Shakshuka")
	assert.Contains(t, body, "simmer the sauce")

	var recipe models.Recipe
	require.NoError(t, db.First(&recipe).Error)
	assert.Equal(t, "Shakshuka", recipe.Title)
	assert.EqualValues(t, 0, recipe.ViewCount)

	detailPath := "/recipes/" + itoa(recipe.ID)

	// Each detail view bumps the counter.
	for i := 1; i <= 2; i++ {
		resp, _ = b.get(detailPath)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.NoError(t, db.First(&recipe, recipe.ID).Error)
	assert.EqualValues(t, 2, recipe.ViewCount)

	// Edit replaces children and redirects back to the detail page.
	resp, _ = b.postForm(detailPath+"/edit", url.Values{
		"csrf_token":       {b.csrfToken(detailPath + "/edit")},
		"title":            {"Shakshuka deluxe"},
		"description":      {"eggs in tomato sauce"},
		"ingredients_name": {"egg"},
		"steps_body":       {"do everything at once"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detailPath, resp.Header.Get("Location"))

	resp, body = b.get(detailPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Shakshuka deluxe")
	assert.NotContains(t, body, "poach the eggs")

	// Delete drops the recipe and every child row.
	resp, _ = b.postForm(detailPath+"/delete", url.Values{
		"csrf_token": {b.csrfToken(detailPath + "/edit")},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Step{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMutationWithBadCSRFWritesNothing(t *testing.T) {
	srv, db := newTestApp(t)
	b := newBrowser(t, srv)
	b.signup("cook@example.com", "supersecret")

	for name, token := range map[string]string{
		"MissingToken": "",
		"ForgedToken":  "forged-token",
	} {
		t.Run(name, func(t *testing.T) {
			form := url.Values{"title": {"Should not exist"}}
			if token != "" {
				form.Set("csrf_token", token)
			}
			resp, body := b.postForm("/recipes", form)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, "Invalid CSRF token")

			var count int64
			require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestOwnershipGuards(t *testing.T) {
	srv, db := newTestApp(t)

	owner := newBrowser(t, srv)
	owner.signup("owner@example.com", "supersecret")
	resp, _ := owner.postForm("/recipes", url.Values{
		"csrf_token": {owner.csrfToken("/recipes/new")},
		"title":      {"Owner only"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recipe models.Recipe
	require.NoError(t, db.First(&recipe).Error)
	detailPath := "/recipes/" + itoa(recipe.ID)

	intruder := newBrowser(t, srv)
	intruder.signup("intruder@example.com", "supersecret")

	resp, _ = intruder.get(detailPath + "/edit")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = intruder.postForm(detailPath+"/delete", url.Values{
		"csrf_token": {intruder.csrfToken("/recipes/new")},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSearchAndTagFilter(t *testing.T) {
	srv, _ := newTestApp(t)
	b := newBrowser(t, srv)
	b.signup("cook@example.com", "supersecret")

	create := func(title, tags string) {
		resp, _ := b.postForm("/recipes", url.Values{
			"csrf_token": {b.csrfToken("/recipes/new")},
			"title":      {title},
			"tags_csv":   {tags},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	create("Omelette", "breakfast")
	create("Ramen", "dinner")

	resp, body := b.get("/?q=omel")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Omelette")
	assert.NotContains(t, body, "Ramen")

	resp, body = b.get("/?tag=dinner")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ramen")
	assert.NotContains(t, body, "Omelette")
}

func TestFavoriteFlow(t *testing.T) {
	srv, db := newTestApp(t)
	b := newBrowser(t, srv)
	b.signup("fan@example.com", "supersecret")

	resp, _ := b.postForm("/recipes", url.Values{
		"csrf_token": {b.csrfToken("/recipes/new")},
		"title":      {"Pho"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recipe models.Recipe
	require.NoError(t, db.First(&recipe).Error)
	detailPath := "/recipes/" + itoa(recipe.ID)

	resp, _ = b.postForm(detailPath+"/favorite", url.Values{
		"csrf_token": {b.csrfToken(detailPath)},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detailPath, resp.Header.Get("Location"))

	resp, body := b.get("/favorites")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Pho")

	resp, _ = b.postForm(detailPath+"/unfavorite", url.Values{
		"csrf_token": {b.csrfToken(detailPath)},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = b.get("/favorites")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Pho")
}

func TestAnonymousAccess(t *testing.T) {
	srv, _ := newTestApp(t)
	b := newBrowser(t, srv)

	for _, path := range []string{"/recipes/new", "/favorites", "/account"} {
		resp, _ := b.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp, _ := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRecipeIs404(t *testing.T) {
	srv, _ := newTestApp(t)
	b := newBrowser(t, srv)

	resp, _ := b.get("/recipes/999999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = b.get("/recipes/not-a-number")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPWAEndpoints(t *testing.T) {
	srv, _ := newTestApp(t)
	b := newBrowser(t, srv)

	resp, body := b.get("/manifest.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/manifest+json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "CookShare")

	resp, body = b.get("/sw.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "skipWaiting")

	resp, _ = b.get("/offline")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
