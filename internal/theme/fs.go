// fs.go holds tiny helpers for walking template trees, since template glob
// patterns such as “**/*.html” are not available in the Go standard
// library.  The key export is CollectHTML, which returns every .html path
// under a directory of an fs.FS.
package theme

import (
	"errors"
	"io/fs"
	"strings"
)

// CollectHTML walks root inside fsys and returns the *.html paths it finds,
// sorted lexically (fs.WalkDir order).  A missing root yields no paths and
// no error, so optional directories need no special casing.
//
// Callers typically pass:
//
//	files, _ := CollectHTML(fsys, "classic")
//	tpl.ParseFS(fsys, files...)
func CollectHTML(fsys fs.FS, root string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, p)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}
