package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Native decodes EXIF tags in-process. It covers fewer tags than the
// exiftool adapter (notably no PNG text chunks) and exists so indexing
// still works on hosts without the external tool installed.
type Native struct{}

func NewNative() *Native {
	return &Native{}
}

func (n *Native) Check() error {
	return nil
}

func (n *Native) Extract(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	defer file.Close()

	decoded, err := exif.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}

	walker := &fieldWalker{fields: make(map[string]string)}
	if err := decoded.Walk(walker); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	return walker.fields, nil
}

type fieldWalker struct {
	fields map[string]string
}

func (w *fieldWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	// tiff renders ASCII values quoted
	w.fields[string(name)] = strings.Trim(tag.String(), `"`)
	return nil
}
