package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"docarchive/internal/http/middleware"
	"docarchive/internal/model"
	"docarchive/internal/service"
	serviceMocks "docarchive/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var alice = &model.User{ID: 1, Username: "alice"}

// withUser stands in for middleware.Auth.
func withUser(u *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserLocalKey, u)
		return c.Next()
	}
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(withUser(alice))
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("no database", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		title := "Invoice"
		doc := model.Document{ID: 4, StorePath: "alice/20240101/20240101120000-4.pdf", Title: &title, Tags: []string{"tax"}}
		page := &service.DocumentPage{
			Items:    []model.Document{doc},
			Rows:     [][]model.Document{{doc}},
			Total:    1,
			Page:     1,
			NumPages: 1,
			PageSize: 12,
		}
		mockSvc.On("List", mock.Anything, alice, 2).Return(page, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?page=2&thumbs", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result pageResponse
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		assert.True(t, result.UseThumbs)
		assert.Equal(t, "Invoice", result.Items[0].DisplayName)
		assert.Equal(t, "/documents/4/download", result.Items[0].DownloadURL)
		require.Len(t, result.Rows, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid page falls back to first", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, alice, 1).Return(&service.DocumentPage{Page: 1, NumPages: 1}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?page=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result pageResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.False(t, result.UseThumbs)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, alice, 1).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocuments_NoUser(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/documents", ListDocuments(new(serviceMocks.MockDocumentService)))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
}

func TestSearchDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/search", SearchDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		page := &service.DocumentPage{Page: 1, NumPages: 1, Tags: []string{"2024", "tax"}}
		mockSvc.On("Search", mock.Anything, alice, "tax 2024", 1).Return(page, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/search?tags=tax+2024", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result pageResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, []string{"2024", "tax"}, result.Tags)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no tags", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, alice, "", 1).Return(nil, service.ErrTagsRequired).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/search", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "TAGS_REQUIRED", decodeError(t, resp).Error.Code)
	})
}

func pdfForm(t *testing.T, fields map[string]string, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="scan.pdf"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.4\n"))
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := pdfForm(t, map[string]string{
			"title":                "Lease",
			"tags":                 "home, contracts",
			"archive_numbers":      "3",
			"title_from_file_name": "on",
		}, "application/pdf")

		start, length := int64(10), int64(3)
		expectedDoc := &model.Document{ID: 9, ArchiveNumbersStart: &start, ArchiveNumbersLength: &length}
		mockSvc.On("Upload", mock.Anything, alice, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.FileName == "scan.pdf" &&
				in.ContentType == "application/pdf" &&
				in.Title == "Lease" &&
				in.TitleFromFileName &&
				in.Tags == "home, contracts" &&
				in.ArchiveNumbers != nil && *in.ArchiveNumbers == 3 &&
				in.File != nil
		})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result documentResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, int64(9), result.ID)
		assert.Equal(t, "10-12", result.ArchiveNumbers)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid archive numbers", func(t *testing.T) {
		body, ct := pdfForm(t, map[string]string{"archive_numbers": "many"}, "application/pdf")

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ARCHIVE_NUMBERS", decodeError(t, resp).Error.Code)
	})

	t.Run("not a pdf", func(t *testing.T) {
		body, ct := pdfForm(t, nil, "text/plain")
		mockSvc.On("Upload", mock.Anything, alice, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.ContentType == "text/plain" && in.ArchiveNumbers == nil
		})).Return(nil, service.ErrNotPDF).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "NOT_PDF", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unusable user name", func(t *testing.T) {
		body, ct := pdfForm(t, nil, "application/pdf")
		mockSvc.On("Upload", mock.Anything, alice, mock.Anything).Return(nil, service.ErrInvalidUserName).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_USER_NAME", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := pdfForm(t, nil, "application/pdf")
		mockSvc.On("Upload", mock.Anything, alice, mock.Anything).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedDoc := &model.Document{ID: 7, StorePath: "alice/20240101/20240101120000-7.pdf", Tags: []string{"a b", "c"}}
		mockSvc.On("Get", mock.Anything, alice, int64(7)).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/7", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result documentResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, int64(7), result.ID)
		assert.Equal(t, "20240101120000-7.pdf", result.DisplayName)
		assert.Equal(t, "a b, c", result.TagString)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, alice, int64(99)).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/99", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-3"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, id)
			assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
		}
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, alice, int64(5)).Return(nil, errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/5", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Patch("/documents/:id", UpdateDocument(mockSvc))

	patch := func(id, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPatch, "/documents/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		want := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
		title := "Renamed"
		mockSvc.On("UpdateProperties", mock.Anything, alice, int64(3), mock.MatchedBy(func(in service.PropertiesInput) bool {
			return in.Title == "Renamed" && in.Tags == "x y" && in.CreationTime.Equal(want)
		})).Return(&model.Document{ID: 3, Title: &title}, nil).Once()

		resp := patch("3", `{"title":"Renamed","tags":"x y","creation_time":"2023-05-06T07:08:09Z"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result documentResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "Renamed", result.DisplayName)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad creation time", func(t *testing.T) {
		resp := patch("3", `{"title":"x","creation_time":"yesterday"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CREATION_TIME", decodeError(t, resp).Error.Code)
	})

	t.Run("tag too long", func(t *testing.T) {
		mockSvc.On("UpdateProperties", mock.Anything, alice, int64(4), mock.Anything).Return(nil, service.ErrInvalidTags).Once()

		resp := patch("4", `{"tags":"`+strings.Repeat("t", 51)+`","creation_time":"2023-05-06T07:08:09Z"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_TAGS", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, alice, int64(3)).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/3", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, alice, int64(4)).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/4", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, alice, int64(5)).Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/5", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownload(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))
	app.Get("/documents/:id/download/:name", DownloadNamed(mockSvc))

	title := "Café Receipt"
	doc := &model.Document{ID: 8, StorePath: "alice/20240101/20240101120000-8.pdf", Title: &title}

	t.Run("redirects to named url", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, alice, int64(8)).Return(doc, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/8/download", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/documents/8/download/cafe_receipt.pdf", resp.Header.Get("Location"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("streams pdf", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, alice, int64(8)).
			Return(io.NopCloser(strings.NewReader("%PDF-1.4 body")), doc, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/8/download/cafe_receipt.pdf", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="cafe_receipt.pdf"`)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.4 body", string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, alice, int64(9)).Return(nil, nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/9/download/x.pdf", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestThumbnail(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/:id/thumb", Thumbnail(mockSvc))

	t.Run("page index", func(t *testing.T) {
		mockSvc.On("Thumbnail", mock.Anything, alice, int64(2), 3).Return(io.NopCloser(strings.NewReader("png")), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/2/thumb?n=3", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad index uses first page", func(t *testing.T) {
		mockSvc.On("Thumbnail", mock.Anything, alice, int64(2), 0).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/2/thumb?n=x", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListTags(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/tags", ListTags(mockSvc))

	mockSvc.On("ListTags", mock.Anything, alice).Return(nil, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/tags", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"data":[]}`, string(body))
	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockDocumentService)
	denyAll := func(c *fiber.Ctx) error { return fiber.ErrUnauthorized }
	RegisterRoutes(app, nil, mockSvc, denyAll)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("documents require auth", func(t *testing.T) {
		for _, p := range []string{"/documents", "/documents/1", "/documents/search?tags=a", "/tags"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, p, nil))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, p)
		}
	})

	t.Run("liveness is public", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouting_SearchIsNotAnID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	mockSvc := new(serviceMocks.MockDocumentService)
	RegisterRoutes(app, nil, mockSvc, withUser(alice))

	mockSvc.On("Search", mock.Anything, alice, "a", 1).Return(&service.DocumentPage{Page: 1, NumPages: 1}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/search?tags=a", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}
