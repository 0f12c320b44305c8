package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// srcEncoding describes unicode encoding detected from BOM at the beginning
// of a source document.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// sniffLen is how much of the file beginning we look at during detection.
const sniffLen = 512

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF sniffs BOM at the beginning of the buffer. UTF-32 marks must be
// checked before UTF-16 ones - UTF-32LE BOM starts with UTF-16LE BOM bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps the reader with a decoding transformer when source is
// not a plain UTF-8 stream.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
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
	}
	panic(fmt.Sprintf("unsupported source encoding requested: %d", enc))
}

// isArchiveFile checks if file is a zip archive we could look into.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf, err := readSniffBuffer(f)
	if err != nil {
		return false, err
	}
	t, err := filetype.Match(buf)
	if err != nil {
		return false, err
	}
	return t == matchers.TypeZip, nil
}

// isDocumentFile checks if file looks like a document serialized to pandoc
// AST JSON and detects its unicode encoding.
func isDocumentFile(path string) (bool, srcEncoding, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false, encUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	buf, err := readSniffBuffer(f)
	if err != nil {
		return false, encUnknown, err
	}
	return sniffDocument(buf)
}

// isDocumentInArchive is isDocumentFile for files stored in zip archive.
func isDocumentInArchive(f *zip.File) (bool, srcEncoding, error) {
	if !strings.EqualFold(filepath.Ext(f.FileHeader.Name), ".json") {
		return false, encUnknown, nil
	}

	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	buf, err := readSniffBuffer(r)
	if err != nil {
		return false, encUnknown, err
	}
	return sniffDocument(buf)
}

func readSniffBuffer(r io.Reader) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// sniffDocument decodes the head of the buffer and looks for the pandoc AST
// envelope marks: JSON object with "pandoc-api-version" key near the top.
func sniffDocument(buf []byte) (bool, srcEncoding, error) {
	enc := detectUTF(buf)

	// truncated multi-byte sequence at the sniff boundary is not an error,
	// whatever was decoded before it is enough
	head, err := io.ReadAll(selectReader(bytes.NewReader(buf), enc))
	if err != nil && len(head) == 0 {
		head = buf
	}

	text := strings.TrimLeftFunc(string(head), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if !strings.HasPrefix(text, "{") {
		return false, encUnknown, nil
	}
	if !strings.Contains(text, `"pandoc-api-version"`) {
		return false, encUnknown, nil
	}
	return true, enc, nil
}
