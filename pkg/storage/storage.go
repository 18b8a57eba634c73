package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dtnitsch/whatif/models"
)

const (
	ArticlesDir = "what if"
	OverviewDir = "overview"
)

// Storage is the offline asset cache. Layout under root:
//
//	what if/<n>/<n>.html
//	what if/<n>/<i>.png
//	what if/overview/<i>.png
type Storage struct {
	root string
}

func New(root string) *Storage {
	return &Storage{root: root}
}

// OfflineBase is the directory holding one subdirectory per article.
func (s *Storage) OfflineBase() string {
	return filepath.Join(s.root, ArticlesDir)
}

func (s *Storage) ArticleDir(number int) string {
	return filepath.Join(s.OfflineBase(), strconv.Itoa(number))
}

func (s *Storage) HTMLPath(number int) string {
	return filepath.Join(s.ArticleDir(number), fmt.Sprintf("%d.html", number))
}

// ImagePath is the path of the index-th (1-based) illustration of an article.
func (s *Storage) ImagePath(number, index int) string {
	return filepath.Join(s.ArticleDir(number), fmt.Sprintf("%d.png", index))
}

func (s *Storage) OverviewDir() string {
	return filepath.Join(s.OfflineBase(), OverviewDir)
}

func (s *Storage) OverviewImagePath(index int) string {
	return filepath.Join(s.OverviewDir(), fmt.Sprintf("%d.png", index))
}

// SaveFile writes content through a temp file and a rename so an interrupted
// download never leaves a truncated asset behind.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &models.LocalIOError{Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+"-*")
	if err != nil {
		return &models.LocalIOError{Path: filePath, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.LocalIOError{Path: filePath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.LocalIOError{Path: filePath, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &models.LocalIOError{Path: filePath, Err: err}
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return &models.LocalIOError{Path: filePath, Err: err}
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &models.LocalIOError{Path: filePath, Err: err}
	}
	return data, nil
}

func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

// DeleteAll removes every offline article and overview image. Article
// metadata lives in the document store and is not touched.
func (s *Storage) DeleteAll() error {
	if err := os.RemoveAll(s.OfflineBase()); err != nil {
		return &models.LocalIOError{Path: s.OfflineBase(), Err: err}
	}
	return nil
}
