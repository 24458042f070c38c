package checklist

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtension is the file extension of checklist documents.
const DefaultExtension = ".md"

// Load reads and parses the document stored at path.
func (c *Codec) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return c.Parse(data, path)
}

// LoadDir parses every file under dir whose name ends in ext, walking in
// lexical order. The first failure aborts the pass so that a document the
// codec cannot represent is never rewritten.
func (c *Codec) LoadDir(dir, ext string) ([]*Document, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	var docs []*Document
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		doc, err := c.Load(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Save overwrites the document's file with its serialized form. The new
// content is written to a sibling temp file and renamed into place so a
// failed write leaves the previous version intact.
func (c *Codec) Save(doc *Document) error {
	path := doc.Path
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(c.Serialize(doc)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
