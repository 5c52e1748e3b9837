// Package docio reads .docx documents as ordered paragraphs and tables.
//
// A .docx file is a zip archive whose main part, word/document.xml, holds
// the body content. The reader walks the body in order, collecting top-level
// paragraph texts and tables as rows of cell texts; paragraphs inside table
// cells belong to their cell, not to the body sequence.
package docio

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docsearch/internal/domain"
)

const documentPart = "word/document.xml"

// Reader parses .docx files into domain documents.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

// Read parses the document at path. A missing path yields ErrFileNotFound,
// the legacy .doc format yields ErrUnsupportedFormat.
func (r *Reader) Read(path string) (*domain.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".doc") {
		return nil, fmt.Errorf("%w: legacy .doc file %s, save as .docx", domain.ErrUnsupportedFormat, path)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	part, err := findPart(&zr.Reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer rc.Close()

	paragraphs, tables, err := parseBody(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &domain.Document{Path: path, Paragraphs: paragraphs, Tables: tables}, nil
}

func findPart(zr *zip.Reader, name string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("missing %s part", name)
}

// parseBody walks word/document.xml in document order. Top-level <w:p>
// elements become paragraphs; <w:tbl> subtrees are consumed whole so their
// inner paragraphs never leak into the body sequence.
func parseBody(r io.Reader) ([]string, [][][]string, error) {
	dec := xml.NewDecoder(r)
	var paragraphs []string
	var tables [][][]string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "p":
			text, err := collectParagraph(dec)
			if err != nil {
				return nil, nil, err
			}
			paragraphs = append(paragraphs, text)
		case "tbl":
			rows, err := collectTable(dec)
			if err != nil {
				return nil, nil, err
			}
			tables = append(tables, rows)
		}
	}
	return paragraphs, tables, nil
}

// collectParagraph gathers the text runs of one <w:p>, consuming tokens up
// to its end element.
func collectParagraph(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "tab", "cr":
				b.WriteByte(' ')
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// collectTable gathers a <w:tbl> subtree as rows of cell texts. Only rows
// and cells of the outer table are structural; text inside a nested table
// is folded into the enclosing cell.
func collectTable(dec *xml.Decoder) ([][]string, error) {
	var rows [][]string
	var row []string
	var cell strings.Builder
	tblDepth := 1
	cellDepth := 0
	inText := false
	for tblDepth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				cellDepth++
				if tblDepth == 1 && cellDepth == 1 {
					cell.Reset()
				}
			case "t":
				inText = true
			case "br", "tab", "cr":
				if cellDepth > 0 {
					cell.WriteByte(' ')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "tr":
				if tblDepth == 1 {
					rows = append(rows, row)
				}
			case "tc":
				cellDepth--
				if tblDepth == 1 && cellDepth == 0 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "p":
				// Cell paragraphs are separated so their texts do not fuse.
				if cellDepth > 0 {
					cell.WriteByte(' ')
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && cellDepth > 0 {
				cell.Write(t)
			}
		}
	}
	return rows, nil
}
