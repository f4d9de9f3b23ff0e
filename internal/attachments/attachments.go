// Package attachments lists the files stored for each module. Files live
// under <root>/<module id>/<category>/ and are grouped into three fixed
// categories. Upload and deletion are handled outside this module.
package attachments

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Category is one fixed attachment group.
type Category string

const (
	CategorySpecs    Category = "specs"
	CategoryDesigns  Category = "designs"
	CategoryEvidence Category = "evidence"
)

// ErrInvalidID is returned for ids that would escape the attachment root.
var ErrInvalidID = errors.New("invalid module id")

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategorySpecs, CategoryDesigns, CategoryEvidence}
}

// File is one stored attachment.
type File struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// Listing maps each category to its files. Every category is present.
type Listing map[Category][]File

// Count returns the total number of files.
func (l Listing) Count() int {
	total := 0
	for _, files := range l {
		total += len(files)
	}
	return total
}

// List reads the attachments of module id under root. A module without a
// directory has an empty listing.
func List(root, id string) (Listing, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	listing := make(Listing, 3)
	for _, category := range Categories() {
		listing[category] = []File{}
		dir := filepath.Join(root, id, string(category))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s attachments for %s: %w", category, id, err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			listing[category] = append(listing[category], File{
				Name:       entry.Name(),
				Size:       info.Size(),
				ModifiedAt: info.ModTime(),
			})
		}
		sort.Slice(listing[category], func(i, j int) bool {
			return listing[category][i].Name < listing[category][j].Name
		})
	}
	return listing, nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
