package storage

import (
	"compress/gzip"
	"errors"
	"io"
	"iter"
	"os"
	"path"
	"runtime"
	"slices"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/matst80/slask-parts/pkg/types"
)

const ProductsFile = "products.jz"

func (d *DiskStorage) StreamContent(w io.Writer, fileName string) (int64, error) {
	osFileName, _ := d.GetFileName(fileName)
	file, err := os.Open(osFileName)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return file.WriteTo(w)
}

// LoadItems reads the gzipped json lines snapshot and hands every product to the handlers.
// Hard deleted products are skipped.
func (d *DiskStorage) LoadItems(handlers ...types.ItemHandler) error {
	fileName, _ := d.GetFileName(ProductsFile)
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer runtime.GC()
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer zipReader.Close()

	decoder := jsoncompat.NewDecoder(zipReader)
	items := make([]*types.Product, 0)
	for err == nil {
		tmp := &types.Product{}
		if err = decoder.Decode(tmp); err == nil {
			if tmp.Deleted {
				continue
			}
			items = append(items, tmp)
		}
	}
	if !errors.Is(err, io.EOF) {
		return err
	}
	logx.Info().Int("items", len(items)).Str("file", fileName).Msg("loaded snapshot")

	var errs []error
	for _, hs := range handlers {
		if err := hs.HandleItems(slices.Values(items)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *DiskStorage) SaveItems(items iter.Seq[*types.Product]) error {
	fileName, tmpFileName := p.GetFileName(ProductsFile)
	if err := os.MkdirAll(path.Dir(fileName), 0o755); err != nil {
		return err
	}

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	zipWriter := gzip.NewWriter(file)
	enc := jsoncompat.NewEncoder(zipWriter)
	count := 0
	for item := range items {
		if err = enc.Encode(item); err != nil {
			break
		}
		count++
	}
	if closeErr := zipWriter.Close(); err == nil {
		err = closeErr
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}

	if err = os.Rename(tmpFileName, fileName); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	logx.Info().Int("items", count).Str("file", fileName).Msg("saved snapshot")
	return nil
}

func (p *DiskStorage) SaveGzippedJson(data any, filename string) error {
	fileName, tmpFileName := p.GetFileName(filename)

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	zipWriter := gzip.NewWriter(file)
	err = jsoncompat.NewEncoder(zipWriter).Encode(data)
	if closeErr := zipWriter.Close(); err == nil {
		err = closeErr
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}

	return os.Rename(tmpFileName, fileName)
}

func (p *DiskStorage) LoadGzippedJson(data any, filename string) error {
	name, _ := p.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer zipReader.Close()

	err = jsoncompat.NewDecoder(zipReader).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (p *DiskStorage) SaveJson(data any, name string) error {
	fileName, tmpFileName := p.GetFileName(name)

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	err = jsoncompat.NewEncoder(file).Encode(data)
	file.Close()
	if err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}

	return os.Rename(tmpFileName, fileName)
}

func (p *DiskStorage) LoadJson(data any, filename string) error {
	name, _ := p.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	err = jsoncompat.NewDecoder(file).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}
