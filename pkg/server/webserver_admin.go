package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/matst80/slask-parts/pkg/common"
	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/storage"
	"github.com/matst80/slask-parts/pkg/types"
)

type UpsertResponse struct {
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// decodeProducts accepts a single product or an array of products.
func decodeProducts(r io.Reader) ([]*types.Product, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errx.New(nil, http.StatusBadRequest, "empty body")
	}
	if data[0] == '[' {
		items := make([]*types.Product, 0)
		if err = jsoncompat.Unmarshal(data, &items); err != nil {
			return nil, errx.New(err, http.StatusBadRequest, "invalid products")
		}
		return items, nil
	}
	item := &types.Product{}
	if err = jsoncompat.Unmarshal(data, item); err != nil {
		return nil, errx.New(err, http.StatusBadRequest, "invalid product")
	}
	return []*types.Product{item}, nil
}

func (ws *WebServer) invalidate(r *http.Request) {
	if ws.Cache == nil {
		return
	}
	if err := ws.Cache.Invalidate(r.Context()); err != nil {
		logx.Warn().Err(err).Msg("failed to invalidate response cache")
	}
}

func (ws *WebServer) UpsertProducts(w http.ResponseWriter, r *http.Request, _ string, enc jsoncompat.Encoder) error {
	items, err := decodeProducts(r.Body)
	if err != nil {
		return err
	}
	if err = ws.Index.UpsertItems(items...); err != nil {
		return err
	}
	ws.invalidate(r)
	updatedItems.Add(float64(len(items)))
	total := ws.Index.Len()
	totalItems.Set(float64(total))
	logx.Info().Int("updated", len(items)).Int("total", total).Msg("products upserted")

	defaultHeaders(w, r, true, "0")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(UpsertResponse{Updated: len(items), Total: total})
}

func (ws *WebServer) DeleteProduct(w http.ResponseWriter, r *http.Request, _ string, _ jsoncompat.Encoder) error {
	id, err := parseProductId(r.PathValue("id"))
	if err != nil {
		return err
	}
	if err = ws.Index.DeleteItem(id); err != nil {
		return err
	}
	ws.invalidate(r)
	totalItems.Set(float64(ws.Index.Len()))
	logx.Info().Uint("id", uint(id)).Msg("product deleted")
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (ws *WebServer) Save(w http.ResponseWriter, r *http.Request, _ string, _ jsoncompat.Encoder) error {
	if ws.Storage == nil {
		return errx.New(nil, http.StatusNotImplemented, "storage not configured")
	}
	if err := ws.Storage.SaveItems(ws.Index.Items()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// Snapshot streams the last saved catalog file.
func (ws *WebServer) Snapshot(w http.ResponseWriter, r *http.Request) {
	if ws.Storage == nil {
		common.WriteError(w, errx.New(nil, http.StatusNotImplemented, "storage not configured"))
		return
	}
	genericHeaders(w, r, false)
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", "attachment; filename="+storage.ProductsFile)
	if _, err := ws.Storage.StreamContent(w, storage.ProductsFile); err != nil {
		logx.Error().Err(err).Msg("failed to stream snapshot")
		common.WriteError(w, errx.New(err, http.StatusNotFound, "no snapshot saved"))
	}
}
