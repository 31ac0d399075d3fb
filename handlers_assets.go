package vellum

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/db"
	"github.com/vellum-ws/vellum/domain"
)

// maxAssetSize bounds uploaded asset bodies.
const maxAssetSize = 32 << 20

func (app *App) handleAsset(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(req.PathValue("id"))
	if err != nil {
		http.NotFound(w, req)
		return
	}
	asset, err := app.Repo.GetAssetByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNoAsset) {
			http.NotFound(w, req)
			return
		}
		app.WriteLog("ERROR", fmt.Sprintf("getting asset %s : %s", id, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(asset.Content)
}

func (app *App) handleAssetUpload(w http.ResponseWriter, req *http.Request) {
	vm := app.NewViewModel(req)
	user := vm.User()
	if user == nil {
		// the access policy should have caught this
		http.Error(w, ErrAuthRequired.Error(), http.StatusUnauthorized)
		return
	}

	if err := req.ParseMultipartForm(maxAssetSize); err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		app.writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxAssetSize))
	if err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("reading upload %s : %s", header.Filename, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	asset := &domain.Asset{
		ID:       id,
		Filename: header.Filename,
		// sniff the content type, the client supplied one is not trusted
		ContentType: mimetype.Detect(content).String(),
		Size:        int64(len(content)),
		Content:     content,
		UploaderID:  user.ID,
		CreatedAt:   time.Now(),
	}
	if err := app.Repo.CreateAsset(asset); err != nil {
		app.WriteLog("ERROR", fmt.Sprintf("creating asset %s : %s", header.Filename, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	app.WriteLog("INFO", fmt.Sprintf("asset %s uploaded as %s", header.Filename, id))
	http.Redirect(w, req, "/admin", http.StatusSeeOther)
}

func (app *App) handleAssetDelete(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(req.PathValue("id"))
	if err != nil {
		http.NotFound(w, req)
		return
	}
	if err := app.Repo.DeleteAsset(id); err != nil {
		if errors.Is(err, db.ErrNoAsset) {
			http.NotFound(w, req)
			return
		}
		app.WriteLog("ERROR", fmt.Sprintf("deleting asset %s : %s", id, err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, req, "/admin", http.StatusSeeOther)
}
