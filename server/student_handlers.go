package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	relayerrors "github.com/jrsteele09/go-auth-relay/internal/errors"
	"github.com/jrsteele09/go-auth-relay/students"
)

func (s *Server) ListStudentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.students.List(r.Context())
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		student, err := s.students.Get(r.Context(), id)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, student)
	}
}

func (s *Server) CreateStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, err := decodeStudent(w, r)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		created, err := s.students.Create(r.Context(), student)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		w.Header().Set("Location", RouteStudents+"/"+strconv.Itoa(created.ID))
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		student, err := decodeStudent(w, r)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		if err := s.students.Update(r.Context(), id, student); err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) DeleteStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		if err := s.students.Delete(r.Context(), id); err != nil {
			s.writeStudentError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func studentID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, relayerrors.ErrInvalidID
	}
	return id, nil
}

func decodeStudent(w http.ResponseWriter, r *http.Request) (students.Student, error) {
	var student students.Student
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&student); err != nil {
		return students.Student{}, fmt.Errorf("%w: %v", relayerrors.ErrInvalidRequest, err)
	}
	return student, nil
}

func (s *Server) writeStudentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case relayerrors.Is(err, relayerrors.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "student not found")
	case relayerrors.Is(err, relayerrors.ErrInvalidID), relayerrors.Is(err, relayerrors.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		requestLogger(r).Err(err).Msg("student request failed")
		writeJSONError(w, http.StatusInternalServerError, relayerrors.ErrInternal.Error())
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
