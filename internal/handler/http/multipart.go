package http

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to temporary files.
const multipartMemory = 32 << 20

// formOverhead leaves room for the non-file form fields.
const formOverhead = 1 << 20

// sniffLen covers the longest magic number filetype matches against.
const sniffLen = 262

// openedFiles holds the uploads of one request together with the handles to
// close once the request is done.
type openedFiles struct {
	uploads []domain.Upload
	closers []io.Closer
}

func (o *openedFiles) Close() {
	for _, c := range o.closers {
		_ = c.Close()
	}
}

// parseMultipart limits the request body to maxFiles files of the maximum
// size and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*domain.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("failed to parse multipart form: %w", err)
	}
	return nil
}

// openFiles opens every file part stored under field.
func openFiles(r *http.Request, field string) (*openedFiles, error) {
	out := &openedFiles{}
	if r.MultipartForm == nil {
		return out, nil
	}
	for _, header := range r.MultipartForm.File[field] {
		f, err := header.Open()
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("open %s: %w", header.Filename, err)
		}
		out.closers = append(out.closers, f)
		sniffed, err := sniff(f)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("read %s: %w", header.Filename, err)
		}
		out.uploads = append(out.uploads, toUpload(header, sniffed, f))
	}
	return out, nil
}

// openFile opens the single file part stored under field.
func openFile(r *http.Request, field string) (*openedFiles, error) {
	files, err := openFiles(r, field)
	if err != nil {
		return nil, err
	}
	if len(files.uploads) == 0 {
		return nil, fmt.Errorf("file is required")
	}
	return files, nil
}

// sniff detects the file type from its leading bytes and rewinds f. It
// returns "" when the bytes match no known type.
func sniff(f multipart.File) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "", nil
	}
	return kind.MIME.Value, nil
}

// toUpload describes one file part. A type detected from the content wins
// over the declared one, which in turn falls back to the file extension.
func toUpload(header *multipart.FileHeader, sniffed string, content io.Reader) domain.Upload {
	contentType := header.Header.Get("Content-Type")
	if sniffed != "" {
		contentType = sniffed
	} else if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
			contentType = byExt
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	return domain.Upload{
		FileName:    filepath.Base(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
		Content:     content,
	}
}

// contentDisposition builds an attachment header for name with quotes and
// control characters stripped.
func contentDisposition(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"`, clean)
}
