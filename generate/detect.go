package generate

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// headLen is how much of a file start we need for both BOM sniffing and
// binary detection.
const headLen = 512

// detectEncoding sniffs BOM at the start of data. UTF-32 variants must be
// checked before UTF-16 - the little endian marks share a prefix.
func detectEncoding(data []byte) srcEncoding {
	switch {
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return encUTF8
	default:
		return encUnknown
	}
}

// selectReader wraps source reader with a decoder when BOM was detected,
// otherwise bytes are passed through as is.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder())
	default:
		return r
	}
}

// isArchiveFile checks if the file at the path is a zip archive we could look
// into. Wrong extension or unreadable zip structure simply means "not an
// archive", not an error.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, nil
	}
	r.Close()
	return true, nil
}

// hasContentExt matches the file name against configured source extensions.
func hasContentExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// isContentFile checks whether the file looks like a textual content source:
// expected extension and no recognizable binary signature.
func isContentFile(path string, exts []string) (bool, srcEncoding, error) {
	if !hasContentExt(path, exts) {
		return false, encUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	return sniffContent(f)
}

// isContentInArchive performs the same check for a zip entry.
func isContentInArchive(f *zip.File, exts []string) (bool, srcEncoding, error) {
	if !hasContentExt(f.FileHeader.Name, exts) {
		return false, encUnknown, nil
	}

	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	return sniffContent(r)
}

func sniffContent(r io.Reader) (bool, srcEncoding, error) {
	head := make([]byte, headLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, encUnknown, err
	}
	head = head[:n]

	// anything with a known binary signature is not a content source no
	// matter how it is named
	if t, err := filetype.Match(head); err == nil && t != filetype.Unknown {
		return false, encUnknown, nil
	}
	return true, detectEncoding(head), nil
}
