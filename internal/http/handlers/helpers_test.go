package handlers_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fitroom-server/internal/domain"
	"fitroom-server/internal/http/handlers"
	"fitroom-server/internal/http/httpapi"
	"fitroom-server/internal/infra"
	"fitroom-server/internal/providers/chat"
	"fitroom-server/internal/session"
	"fitroom-server/internal/storage"
)

type stubChat struct {
	reply string
	err   error
	last  chat.Request
	calls int
}

func (s *stubChat) Complete(ctx context.Context, req chat.Request) (string, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubChat) Provider() string { return "stub" }

type stubTryOn struct {
	err      error
	category domain.GarmentCategory
	result   []byte
	calls    int
}

func (s *stubTryOn) TryOn(ctx context.Context, modelPath, clothingPath string, category domain.GarmentCategory) (string, error) {
	s.calls++
	s.category = category
	if s.err != nil {
		return "", s.err
	}
	tmp, err := os.CreateTemp("", "stub_result_*.png")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(s.result); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}

type testEnv struct {
	app    *handlers.App
	router http.Handler
	files  *storage.Store
	chat   *stubChat
	tryOn  *stubTryOn
	tokens *session.Tokens
	store  *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	files, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	cfg := &infra.Config{
		AppEnv:       "development",
		MaxUploadMB:  16,
		ChatTimeout:  5 * time.Second,
		TryOnTimeout: 5 * time.Second,
	}
	chatStub := &stubChat{reply: "Looks great!"}
	tryOnStub := &stubTryOn{result: []byte("composite-bytes")}
	tokens := session.NewTokens("test-secret", time.Hour)
	store := session.NewMemoryStore()

	app := &handlers.App{
		Logger:     zerolog.Nop(),
		Config:     cfg,
		Files:      files,
		Sessions:   store,
		Tokens:     tokens,
		ChatClient: chatStub,
		TryOn:      tryOnStub,
	}
	return &testEnv{
		app:    app,
		router: httpapi.NewRouter(app, zerolog.Nop(), nil),
		files:  files,
		chat:   chatStub,
		tryOn:  tryOnStub,
		tokens: tokens,
		store:  store,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(60 * x), G: uint8(60 * y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartImage(t *testing.T, filename string, data []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}
