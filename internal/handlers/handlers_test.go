package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/stretchr/testify/assert"
)

func newTestServer() *Server {
	return &Server{Metrics: utils.NewMetricsCollector()}
}

func TestRespondMapsAppErrorToStatus(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	s.respond(rec, utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Review not found")
}

func TestRespondTreatsRawErrorAsServerFailure(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	// An uncoded error must never be serialized as a 200 payload, and its
	// text stays out of the response.
	s.respond(rec, errors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestRespondEncodesValueReplies(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()

	s.respond(rec, &models.StatusResponse{Success: true, Message: "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
