package tabclean

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"
)

// archiveExts lists the archive extensions Batch can extract.
var archiveExts = []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz"}

// IsArchive reports whether path names a supported archive.
func IsArchive(path string) bool {
	return archiveExt(path) != ""
}

func archiveExt(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// archiveStem returns the archive file name without its archive extension.
func archiveStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(archiveExt(base))]
}

// ExtractArchive unpacks src into dir, which must not exist or be empty.
func ExtractArchive(src, dir string) error {
	if err := archiver.Unarchive(src, dir); err != nil {
		return fmt.Errorf("extract %q: %w", src, err)
	}
	return nil
}
