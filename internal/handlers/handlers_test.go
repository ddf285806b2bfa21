// internal/handlers/handlers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/handlers"
	"github.com/ammerola/pharmacy-be/test/helpers"
)

const testToken = "test-token"

// staticTokens accepts testToken as the configured principal
type staticTokens struct {
	principal domain.Principal
}

func (s staticTokens) Validate(token string) (domain.Principal, error) {
	if token != testToken {
		return domain.Principal{}, errors.New("bad token")
	}
	return s.principal, nil
}

var testCaller = helpers.Principal(domain.PositionManager)

func newTestRouter(h handlers.Handlers) http.Handler {
	return handlers.NewRouter(h, staticTokens{principal: testCaller}, helpers.TestLogger())
}

// serve runs one authenticated request through router. body may be nil, a
// string or any value that is JSON encoded.
func serve(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
