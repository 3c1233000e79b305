package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/educlara/educlara/apps/api/echo"
	"github.com/educlara/educlara/core"
	"github.com/educlara/educlara/core/leaderboard"
	"github.com/educlara/educlara/storage/database/inmem"
	"github.com/educlara/educlara/tests"
)

func setup(t *testing.T) (Server, *inmemdb.Store) {
	return setupWith(t, inmemdb.NewStore())
}

func setupWith(t *testing.T, store *inmemdb.Store) (Server, *inmemdb.Store) {
	if core.Conf == nil {
		if _, err := core.LoadConfig(); err != nil {
			t.Fatalf("LoadConfig() failed: %v", err)
		}
		core.Conf.TestMode = true
	}

	logger := testutil.NewLogger(t)
	board := leaderboard.NewCache(leaderboard.NewAggregator(store.Feeds(), logger), logger, time.Minute)
	validate, translator := core.NewValidator()

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			Board:          board,
			Validate:       validate,
			Translator:     translator,
		},
		nil, /* shutdown */
	)
	return app, store
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "")
}

func getToken(t *testing.T, userID string) string {
	claims := GetViewerClaims(userID, "", "")
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
