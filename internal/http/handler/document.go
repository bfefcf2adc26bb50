package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"docarchive/internal/http/middleware"
	"docarchive/internal/model"
	"docarchive/internal/service"
	"docarchive/internal/tagging"
)

// documentResponse is a document as returned by the API.
type documentResponse struct {
	model.Document
	DisplayName    string `json:"display_name"`
	ArchiveNumbers string `json:"archive_numbers"`
	TagString      string `json:"tag_string"`
	DownloadURL    string `json:"download_url"`
	ThumbnailURL   string `json:"thumbnail_url"`
}

func toResponse(d model.Document) documentResponse {
	return documentResponse{
		Document:       d,
		DisplayName:    d.DisplayName(),
		ArchiveNumbers: d.ArchiveNumbersString(),
		TagString:      tagging.EditString(d.Tags),
		DownloadURL:    fmt.Sprintf("/documents/%d/download", d.ID),
		ThumbnailURL:   fmt.Sprintf("/documents/%d/thumb", d.ID),
	}
}

// pageResponse is an index page.
type pageResponse struct {
	Items       []documentResponse   `json:"data"`
	Rows        [][]documentResponse `json:"rows"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	NumPages    int                  `json:"num_pages"`
	PageSize    int                  `json:"page_size"`
	HasNext     bool                 `json:"has_next"`
	HasPrevious bool                 `json:"has_previous"`
	UseThumbs   bool                 `json:"use_thumbs"`
	Tags        []string             `json:"tags,omitempty"`
}

func toPageResponse(p *service.DocumentPage, useThumbs bool) pageResponse {
	res := pageResponse{
		Items:       make([]documentResponse, 0, len(p.Items)),
		Rows:        make([][]documentResponse, 0, len(p.Rows)),
		Total:       p.Total,
		Page:        p.Page,
		NumPages:    p.NumPages,
		PageSize:    p.PageSize,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
		UseThumbs:   useThumbs,
		Tags:        p.Tags,
	}
	for _, d := range p.Items {
		res.Items = append(res.Items, toResponse(d))
	}
	for _, row := range p.Rows {
		r := make([]documentResponse, 0, len(row))
		for _, d := range row {
			r = append(r, toResponse(d))
		}
		res.Rows = append(res.Rows, r)
	}
	return res
}

// currentUser returns the authenticated user; handlers are only mounted behind middleware.Auth.
func currentUser(c *fiber.Ctx) (*model.User, error) {
	if u := middleware.UserFromCtx(c); u != nil {
		return u, nil
	}
	return nil, writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParam reads ?page=, falling back to the first page on anything unparsable.
func pageParam(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return 1
	}
	return page
}

// ListDocuments returns one page of the caller's documents.
//
// @Summary List documents
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param page query int false "page number, out-of-range values are clamped"
// @Param thumbs query bool false "render the thumbnail grid"
// @Success 200 {object} pageResponse
// @Failure 401 {object} errorPayload
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		res, err := docSvc.List(c.UserContext(), user, pageParam(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toPageResponse(res, c.Context().QueryArgs().Has("thumbs")))
	}
}

// SearchDocuments returns one page of the caller's documents carrying every given tag.
//
// @Summary Search documents by tags
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param tags query string true "tag string, comma or space separated"
// @Param page query int false "page number"
// @Success 200 {object} pageResponse
// @Failure 400 {object} errorPayload
// @Router /documents/search [get]
func SearchDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		res, err := docSvc.Search(c.UserContext(), user, c.Query("tags"), pageParam(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toPageResponse(res, c.Context().QueryArgs().Has("thumbs")))
	}
}

// UploadDocument accepts a PDF as multipart/form-data.
//
// @Summary Upload a document
// @Tags documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Param title formData string false "title"
// @Param title_from_file_name formData bool false "use the file name as title"
// @Param tags formData string false "tag string"
// @Param archive_numbers formData int false "number of archive numbers to reserve"
// @Success 201 {object} documentResponse
// @Failure 400 {object} errorPayload
// @Router /documents [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		in := service.UploadInput{
			FileName:          fh.Filename,
			ContentType:       fh.Header.Get("Content-Type"),
			Title:             c.FormValue("title"),
			TitleFromFileName: formBool(c.FormValue("title_from_file_name")),
			Tags:              c.FormValue("tags"),
		}
		if v := strings.TrimSpace(c.FormValue("archive_numbers")); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ARCHIVE_NUMBERS", "archive numbers must be a non-negative integer")
			}
			in.ArchiveNumbers = &n
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()
		in.File = f

		doc, err := docSvc.Upload(c.UserContext(), user, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*doc))
	}
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// GetDocument returns a document with its tags.
//
// @Summary Get a document
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path int true "document id"
// @Success 200 {object} documentResponse
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), user, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toResponse(*doc))
	}
}

type propertiesRequest struct {
	Title        string `json:"title" form:"title"`
	Tags         string `json:"tags" form:"tags"`
	CreationTime string `json:"creation_time" form:"creation_time"`
}

// UpdateDocument edits title, tags and creation time.
//
// @Summary Update document properties
// @Tags documents
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "document id"
// @Param body body propertiesRequest true "properties, creation_time in RFC 3339"
// @Success 200 {object} documentResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [patch]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req propertiesRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		ct, err := time.Parse(time.RFC3339, strings.TrimSpace(req.CreationTime))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CREATION_TIME", "creation_time must be an RFC 3339 timestamp")
		}

		doc, err := docSvc.UpdateProperties(c.UserContext(), user, id, service.PropertiesInput{
			Title:        req.Title,
			Tags:         req.Tags,
			CreationTime: ct,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toResponse(*doc))
	}
}

// DeleteDocument removes a document and its files.
//
// @Summary Delete a document
// @Tags documents
// @Security BearerAuth
// @Param id path int true "document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), user, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument redirects to the download URL carrying a readable file name.
//
// @Summary Download a document
// @Tags documents
// @Security BearerAuth
// @Param id path int true "document id"
// @Success 302
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/download [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), user, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		name := url.PathEscape(service.DownloadName(doc))
		return c.Redirect(fmt.Sprintf("/documents/%d/download/%s", id, name), fiber.StatusFound)
	}
}

// DownloadNamed streams the stored PDF. The name segment only serves the browser.
//
// @Summary Download a document under a file name
// @Tags documents
// @Security BearerAuth
// @Produce application/pdf
// @Param id path int true "document id"
// @Param name path string true "file name"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/download/{name} [get]
func DownloadNamed(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, doc, err := docSvc.Download(c.UserContext(), user, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", service.DownloadName(doc)))
		return c.SendStream(rc)
	}
}

// Thumbnail serves page thumbnail n (default 0) as PNG.
//
// @Summary Document thumbnail
// @Tags documents
// @Security BearerAuth
// @Produce image/png
// @Param id path int true "document id"
// @Param n query int false "zero-based page index"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/thumb [get]
func Thumbnail(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		n, err := strconv.Atoi(c.Query("n", "0"))
		if err != nil {
			n = 0
		}
		rc, err := docSvc.Thumbnail(c.UserContext(), user, id, n)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.SendStream(rc)
	}
}

// ListTags returns the tags used on the caller's documents.
//
// @Summary List tags
// @Tags tags
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string][]model.Tag
// @Router /tags [get]
func ListTags(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if user == nil {
			return err
		}
		tags, err := docSvc.ListTags(c.UserContext(), user)
		if err != nil {
			return writeServiceError(c, err)
		}
		if tags == nil {
			tags = []model.Tag{}
		}
		return c.JSON(fiber.Map{"data": tags})
	}
}
