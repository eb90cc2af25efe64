package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/model"
	"tradeanalytics/src/schema"
	"tradeanalytics/src/service"
)

const defaultUploadName = "upload.csv"

type importer interface {
	Import(ctx context.Context, req service.ImportRequest) (service.ImportResult, error)
}

type importLister interface {
	List(ctx context.Context, limit int) ([]model.ImportBatch, error)
}

type latestImportFinder interface {
	FindLatest(ctx context.Context) (*model.ImportBatch, error)
}

// CreateImportHandler accepts a CSV export either as a multipart "file" part
// or as the raw request body (name taken from ?fileName=). Manual column
// mappings are passed as repeated mapping=field=Header values.
// Accepted imports answer 201; outcomes needing user action answer 422 with
// the structured result.
func CreateImportHandler(svc importer, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		req, err := readImportRequest(r, maxBytes)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			case errors.Is(err, schema.ErrUnknownField):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
			}
			return
		}

		res, err := svc.Import(r.Context(), req)
		if err != nil {
			logger.WithError(err).WithField("file_name", req.FileName).Error("failed to import file")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		status := http.StatusCreated
		if !res.OK() {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, res)
	}
}

func readImportRequest(r *http.Request, maxBytes int64) (service.ImportRequest, error) {
	req := service.ImportRequest{FileName: r.URL.Query().Get("fileName")}
	pairs := r.URL.Query()["mapping"]

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if maxBytes <= 0 {
			maxBytes = 32 << 20
		}
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return req, err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return req, err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return req, err
		}
		req.CSV = string(data)
		if req.FileName == "" {
			req.FileName = header.Filename
		}
		pairs = append(pairs, r.MultipartForm.Value["mapping"]...)
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return req, err
		}
		req.CSV = string(data)
	}

	if strings.TrimSpace(req.FileName) == "" {
		req.FileName = defaultUploadName
	}

	if len(pairs) > 0 {
		mapping, err := schema.ParseMapping(pairs)
		if err != nil {
			return req, err
		}
		req.Mapping = mapping
	}
	return req, nil
}

// ListImportsHandler returns the most recent import batches (?limit=).
func ListImportsHandler(repo importLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		batches, err := repo.List(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("failed to list imports")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if batches == nil {
			batches = []model.ImportBatch{}
		}
		writeJSON(w, http.StatusOK, batches)
	}
}

// LatestImportHandler returns the most recent import batch, or 404 when
// nothing was imported yet.
func LatestImportHandler(repo latestImportFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, err := repo.FindLatest(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to find latest import")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if batch == nil {
			writeError(w, http.StatusNotFound, "no imports yet")
			return
		}
		writeJSON(w, http.StatusOK, batch)
	}
}
