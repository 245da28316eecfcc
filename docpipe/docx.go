package docpipe

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	maxXMLDepth   = 256
	maxDocxXMLLen = 64 << 20 // decompressed word/document.xml
)

// extractDocx reads word/document.xml from the archive. Each paragraph
// becomes a line; soft breaks split lines; page breaks start a new page.
func extractDocx(data []byte) ([]Page, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open zip: %v", ErrUnreadable, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found in archive", ErrUnreadable)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open document.xml: %v", ErrUnreadable, err)
	}
	defer rc.Close()

	text, err := walkDocxXML(io.LimitReader(rc, maxDocxXMLLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return splitPages(text), nil
}

// walkDocxXML returns the document text with '\n' between lines and '\f'
// between pages.
func walkDocxXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		depth  int
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return "", fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte(' ')
			case "br", "cr":
				if attrValue(t, "type") == "page" {
					sb.WriteByte('\f')
				} else {
					sb.WriteByte('\n')
				}
			case "pageBreakBefore":
				if v := attrValue(t, "val"); v == "" || v == "1" || v == "true" || v == "on" {
					sb.WriteByte('\f')
				}
			}

		case xml.CharData:
			if inText {
				sb.Write(t)
			}

		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}

func attrValue(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
