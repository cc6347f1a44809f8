package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	jwtutil "github.com/imanmolsaini/Campus-Connect-sub000/pkg/jwt"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRequest(method, target string, body io.Reader, userID primitive.ObjectID, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !userID.IsZero() {
		req = req.WithContext(middleware.WithUser(req.Context(), &jwtutil.Claims{UserID: userID.Hex(), Role: "student"}))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

func readEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
