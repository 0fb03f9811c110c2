package destiin

import (
	"context"
	"errors"
	"testing"

	"github.com/avohilabs/destiin/core"
	"github.com/google/uuid"
)

func TestApp_WriteLog(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject unknown levels", func(t *testing.T) {
		app, _ := setupTestApp(t)
		if err := app.WriteLog(ctx, "TRACE", "t", "m"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should attach the request ID from the context", func(t *testing.T) {
		app, repo := setupTestApp(t)
		requestID := uuid.Must(uuid.NewV7())

		err := app.WriteLog(ContextWithRequestID(ctx, requestID), "INFO", "title", "message",
			core.LogWithContext(map[string]any{"key": "value"}))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		logs, _ := repo.GetLogs(ctx, 1)
		if len(logs) != 1 {
			t.Fatalf("\nwanted:\n1 log\ngot:\n%d", len(logs))
		}
		got := logs[0]
		if got.RequestID == nil || *got.RequestID != requestID || got.Context["key"] != "value" || !got.Timestamp.Equal(baseTime) {
			t.Fatalf("\nwanted:\nlog for request %s\ngot:\n%+v", requestID, got)
		}
	})
}

func TestApp_LogError(t *testing.T) {
	ctx := context.Background()
	app, _ := setupTestApp(t)

	app.LogError(ctx, "create_activity API Error", errors.New("boom"))
	app.LogError(ctx, "update_booking API Error", errors.New("bang"))

	logs, err := app.GetErrorLogs(ctx, 0)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("\nwanted:\n2 logs\ngot:\n%d", len(logs))
	}
	newest := logs[0]
	if newest.Title != "update_booking API Error" || newest.Message != "bang" || newest.Context["error"] != "bang" {
		t.Fatalf("\nwanted:\nnewest entry first\ngot:\n%+v", newest)
	}

	limited, _ := app.GetErrorLogs(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("\nwanted:\n1 log\ngot:\n%d", len(limited))
	}
}
