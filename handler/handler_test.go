package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/francoispqt/gojay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lifecycle/catalog"
	"github.com/viant/lifecycle/catalog/cache"
	"github.com/viant/assertly"
	"github.com/viant/lifecycle/config"
)

func TestStatusOK(t *testing.T) {
	recorder := httptest.NewRecorder()
	StatusOK(recorder, httptest.NewRequest(http.MethodGet, StatusURI, nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestConfigHandler(t *testing.T) {
	cfg := &config.Config{WarmUp: []string{"cache/memory"}}
	cfg.Init()
	recorder := httptest.NewRecorder()
	NewHandler(cfg).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, ConfigURI, nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	actual := &config.Config{}
	require.Nil(t, json.Unmarshal(recorder.Body.Bytes(), actual))
	assert.Equal(t, cfg.WarmUp, actual.WarmUp)
	assert.Equal(t, cfg.Endpoint.Port, actual.Endpoint.Port)
}

func TestCatalogHandler(t *testing.T) {
	cfg := &config.Config{}
	cfg.Init()
	aCatalog, err := catalog.New(cfg)
	require.Nil(t, err)
	_, err = aCatalog.Get(context.Background(), cache.Key)
	require.Nil(t, err)
	aHandler := NewCatalogHandler(func() gojay.MarshalerJSONObject { return aCatalog.Snapshot() })

	var testCases = []struct {
		description string
		method      string
		expectCode  int
	}{
		{description: "get snapshot", method: http.MethodGet, expectCode: http.StatusOK},
		{description: "post rejected", method: http.MethodPost, expectCode: http.StatusMethodNotAllowed},
	}
	for _, testCase := range testCases {
		recorder := httptest.NewRecorder()
		aHandler.ServeHTTP(recorder, httptest.NewRequest(testCase.method, CatalogURI, nil))
		assert.Equal(t, testCase.expectCode, recorder.Code, testCase.description)
		if testCase.expectCode != http.StatusOK {
			continue
		}
		expect := `{"Registries":[{"Name":"product","Sealed":false},{"Name":"notifier"},{"Name":"serializer"},{"Name":"sink"}],"Singletons":[{"Key":"cache/memory","State":"ready"}]}`
		assertly.AssertValues(t, expect, recorder.Body.String(), testCase.description)
		snapshot := map[string]interface{}{}
		require.Nil(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot), testCase.description)
		registries, ok := snapshot["Registries"].([]interface{})
		require.True(t, ok, testCase.description)
		assert.Len(t, registries, 4, testCase.description)
		singletons, ok := snapshot["Singletons"].([]interface{})
		require.True(t, ok, testCase.description)
		require.Len(t, singletons, 1, testCase.description)
		assert.Equal(t, "cache/memory", singletons[0].(map[string]interface{})["Key"], testCase.description)
	}
}
