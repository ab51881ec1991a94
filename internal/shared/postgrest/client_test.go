package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    json.Number `json:"id"`
	Title string      `json:"title"`
}

func TestCollectionListSendsKeyAndOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/sm_activities", r.URL.Path)
		assert.Equal(t, "request_date.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":2,"title":"b"},{"id":1,"title":"a"}]`))
	}))
	defer srv.Close()

	col := NewCollection[row](NewClient(srv.URL+"/", "secret"), "sm_activities")
	rows, err := col.List(context.Background(), "request_date.desc")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].Title)
}

func TestCollectionInsertReturnsRepresentation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"new"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":7,"title":"new"}]`))
	}))
	defer srv.Close()

	col := NewCollection[row](NewClient(srv.URL, "k"), "sm_activities")
	created, err := col.Insert(context.Background(), map[string]string{"title": "new"})
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), created.ID)
}

func TestCollectionNonSuccessIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"PGRST204","message":"Could not find the 'foo' column","details":null,"hint":null}`))
	}))
	defer srv.Close()

	col := NewCollection[row](NewClient(srv.URL, "k"), "sm_activities")
	_, err := col.Insert(context.Background(), map[string]string{"foo": "x"})
	require.Error(t, err)

	re, ok := AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Contains(t, re.Body, "PGRST204")
	assert.Equal(t, "Could not find the 'foo' column", re.Message())
}

func TestCollectionPatchUnknownIDIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.999", r.URL.Query().Get("id"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	col := NewCollection[row](NewClient(srv.URL, "k"), "sm_activities")
	_, err := col.Patch(context.Background(), "999", map[string]string{"title": "x"})

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.Status)
}

func TestCollectionDelete(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.3", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	col := NewCollection[row](NewClient(srv.URL, "k"), "business_inquiries")
	require.NoError(t, col.Delete(context.Background(), "3"))
	assert.Equal(t, 1, calls)
}
