package server_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-relay/students"
	"github.com/stretchr/testify/require"
)

func decodeStudents(t *testing.T, body []byte) []students.Student {
	t.Helper()
	var list []students.Student
	require.NoError(t, json.Unmarshal(body, &list))
	return list
}

func TestStudents_List(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(t, http.MethodGet, "/api/students", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeStudents(t, w.Body.Bytes())
	require.Len(t, list, 3)
	require.Equal(t, "Hoàng Ngọc Vương", list[0].Name)
	require.Equal(t, students.GenderFemale, list[2].Gender)
}

func TestStudents_CRUD(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(t, http.MethodPost, "/api/students", map[string]any{"name": "Lê Văn Cường", "age": 25, "gender": "NAM"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "/api/students/4", w.Header().Get("Location"))

	var created students.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, 4, created.ID)

	w = f.do(t, http.MethodGet, "/api/students/4", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":4,"name":"Lê Văn Cường","age":25,"gender":"NAM"}`, w.Body.String())

	w = f.do(t, http.MethodPut, "/api/students/4", map[string]any{"name": "Lê Thị Cúc", "age": 30, "gender": "NU"}, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/students/4", nil, "")
	require.JSONEq(t, `{"id":4,"name":"Lê Thị Cúc","age":30,"gender":"NU"}`, w.Body.String())

	w = f.do(t, http.MethodDelete, "/api/students/4", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/students/4", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudents_Errors(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "get unknown", method: http.MethodGet, path: "/api/students/99", status: http.StatusNotFound},
		{name: "get non numeric", method: http.MethodGet, path: "/api/students/abc", status: http.StatusBadRequest},
		{name: "update unknown", method: http.MethodPut, path: "/api/students/99", body: map[string]any{"name": "A", "age": 20, "gender": "NU"}, status: http.StatusNotFound},
		{name: "delete unknown", method: http.MethodDelete, path: "/api/students/99", status: http.StatusNotFound},
		{name: "create malformed", method: http.MethodPost, path: "/api/students", body: "{", status: http.StatusBadRequest},
		{name: "create too young", method: http.MethodPost, path: "/api/students", body: map[string]any{"name": "A", "age": 10, "gender": "NU"}, status: http.StatusBadRequest},
		{name: "update invalid gender", method: http.MethodPut, path: "/api/students/1", body: map[string]any{"name": "A", "age": 20, "gender": "X"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body, "")
			require.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotEmpty(t, body["error"])
		})
	}

	w := f.do(t, http.MethodGet, "/api/students", nil, "")
	require.Len(t, decodeStudents(t, w.Body.Bytes()), 3, "failed writes leave the roster unchanged")
}
