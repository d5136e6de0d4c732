package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox/internal/adapter"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

func TestLogMirror_PatchEntry(t *testing.T) {
	m := NewLogMirror(logger.Nop())
	assert.NoError(t, m.PatchEntry(context.Background(), "temp-1", models.Payload{"_id": realExerciseID}))
	assert.NoError(t, m.PatchEntry(context.Background(), "temp-2", models.Payload{"id": realExerciseID}))
}

func TestWebhookMirror_PatchEntry_PostsPatch(t *testing.T) {
	var (
		got     models.MirrorPatch
		method  string
		path    string
		traceID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, traceID = r.Method, r.URL.Path, r.Header.Get("X-Trace-ID")
		decoded, err := models.DecodePayload(r.Body)
		if assert.NoError(t, err) {
			got.TempID, _ = decoded.String("tempId")
			got.RealID, _ = decoded.String("realId")
			if entity, ok := decoded["entity"].(map[string]any); ok {
				got.Entity = entity
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewWebhookMirror(srv.URL+"/outbox/created", time.Second, logger.Nop())
	ctx := utils.WithTraceID(context.Background(), "trace-1")

	err := m.PatchEntry(ctx, "temp-1", models.Payload{"_id": realExerciseID, "name": "Squat", "__v": 0})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/outbox/created", path)
	assert.Equal(t, "trace-1", traceID)
	assert.Equal(t, "temp-1", got.TempID)
	assert.Equal(t, realExerciseID, got.RealID)
	assert.Equal(t, "Squat", got.Entity["name"])
}

func TestWebhookMirror_PatchEntry_Errors(t *testing.T) {
	t.Run("non-2xx answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "cache is busy", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := NewWebhookMirror(srv.URL, time.Second, logger.Nop()).
			PatchEntry(context.Background(), "temp-1", models.Payload{"_id": realExerciseID})

		assert.ErrorIs(t, err, adapter.ErrServiceUnavailable)
		assert.Equal(t, http.StatusServiceUnavailable, statusOf(err))
	})

	t.Run("host unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := NewWebhookMirror(url, time.Second, logger.Nop()).
			PatchEntry(context.Background(), "temp-1", models.Payload{"_id": realExerciseID})

		assert.ErrorIs(t, err, adapter.ErrTransport)
	})
}
